// Package apperror defines the error taxonomy shared by the service and
// handler layers. Services return these typed errors; the HTTP boundary maps
// them to status codes with errors.Is/errors.As and never retries them.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrUnprocessable      = errors.New("unprocessable entity")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnavailable        = errors.New("service unavailable")
)

type AppError struct {
	Err     error  // sentinel category, matched with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// UnprocessableEntity reports input that parsed fine but carries a value
// outside a closed enumeration. Distinct from ErrValidation (400) so the
// boundary answers 422 no matter which layer caught it.
func UnprocessableEntity(field, message string) *AppError {
	return &AppError{
		Err:     ErrUnprocessable,
		Message: message,
		Field:   field,
	}
}

// DuplicateEmail reports a registration conflict. The message deliberately
// matches the original platform contract ("Email already registered") so
// existing clients keep parsing it.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "Email already registered",
		Field:   "email",
	}
}

// InvalidCredentials covers both unknown-email and wrong-password login
// failures. The two cases must stay indistinguishable to the caller.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// Unauthorized returns an AppError for requests with a missing, invalid or
// expired bearer token, or a token whose subject no longer exists.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unavailable reports a dependency failure (e.g. the database is down).
// HTTP handlers map this to 503 rather than crashing the process.
func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}
