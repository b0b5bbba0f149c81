// Package auth provides password hashing and bearer-token services for the
// user management API.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly ~250ms on a
// modern server — negligible for login, brutal for offline attackers.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It is a struct (not free functions) so that the cost can be injected in
// tests — cost 4 makes tests run in milliseconds without changing the logic
// under test.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom bcrypt
// cost. Use the minimum (4) in tests; never in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained digest (version, cost, salt and hash in one
// string) that goes straight into the password_hash column. The plaintext is
// never logged or stored.
//
// Returns an error if the plaintext exceeds 72 bytes — bcrypt silently
// truncates longer inputs, so we reject them explicitly.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt digest.
// Returns nil on a match, a non-nil error otherwise.
//
// bcrypt.CompareHashAndPassword compares in constant time, so response
// timing does not reveal how close a guess was. A malformed stored digest
// fails closed: the caller sees the same generic error as a wrong password.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		// Covers corrupt or non-bcrypt digests as well as internal errors.
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
