package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound_MatchesSentinel(t *testing.T) {
	err := NotFound("user", 42)

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() does not match ErrNotFound")
	}
	if err.Message != "user not found with id 42" {
		t.Errorf("NotFound() message = %q", err.Message)
	}
}

func TestValidationFailed_CarriesField(t *testing.T) {
	err := ValidationFailed("email", "a valid email is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationFailed() does not match ErrValidation")
	}
	if err.Field != "email" {
		t.Errorf("ValidationFailed() field = %q, want email", err.Field)
	}
}

func TestUnprocessableEntity_DistinctFromValidation(t *testing.T) {
	err := UnprocessableEntity("event_type", "unknown event type")

	if !errors.Is(err, ErrUnprocessable) {
		t.Error("UnprocessableEntity() does not match ErrUnprocessable")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("UnprocessableEntity() must not match ErrValidation")
	}
	if err.Field != "event_type" {
		t.Errorf("UnprocessableEntity() field = %q, want event_type", err.Field)
	}
}

func TestDuplicateEmail(t *testing.T) {
	err := DuplicateEmail()

	if !errors.Is(err, ErrConflict) {
		t.Error("DuplicateEmail() does not match ErrConflict")
	}
	if err.Message != "Email already registered" {
		t.Errorf("DuplicateEmail() message = %q", err.Message)
	}
}

func TestInvalidCredentials_StableMessage(t *testing.T) {
	// Two separate failures must be indistinguishable.
	a, b := InvalidCredentials(), InvalidCredentials()
	if a.Message != b.Message {
		t.Errorf("InvalidCredentials() messages differ: %q vs %q", a.Message, b.Message)
	}
	if !errors.Is(a, ErrInvalidCredentials) {
		t.Error("InvalidCredentials() does not match ErrInvalidCredentials")
	}
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("Invalid or expired token")
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("Unauthorized() does not match ErrUnauthorized")
	}
}

func TestMatchesThroughWrapping(t *testing.T) {
	// Services wrap repository errors with fmt.Errorf %w; errors.Is must
	// still find the sentinel at the bottom of the chain.
	wrapped := fmt.Errorf("service/auth: fetching user 7: %w", NotFound("user", 7))

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is failed to unwrap to ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to extract *AppError")
	}
	if appErr.Message != "user not found with id 7" {
		t.Errorf("extracted message = %q", appErr.Message)
	}
}
