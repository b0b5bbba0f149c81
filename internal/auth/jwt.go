package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime is how long an issued token stays valid. Expiry is a hard
// cutoff; no clock-skew leeway is applied.
const tokenLifetime = 24 * time.Hour

const issuer = "user-management"

// Claims is the JWT payload. The registered "sub" claim carries the numeric
// user ID as a decimal string; email and role are snapshots taken at
// issuance and are not re-validated against current account state.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the numeric account ID out of the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: token subject %q is not a user ID: %w", c.Subject, err)
	}
	return id, nil
}

// TokenService issues and verifies signed bearer tokens.
//
// It holds the HMAC secret used for both signing and verification. The
// secret is passed in explicitly at construction — never read from ambient
// globals — so it can be rotated and tested without reaching into package
// internals. Verification is stateless: there is no server-side revocation,
// a token stays valid until its expiry.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue creates and signs a token for the given account.
//
// Signing algorithm is HS256 — symmetric, same key signs and verifies,
// which fits a single-service deployment. Lifetime is 24 hours.
func (s *TokenService) Issue(userID int64, email, role string) (string, error) {
	return s.IssueWithDuration(userID, email, role, tokenLifetime)
}

// IssueWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired tokens.
func (s *TokenService) IssueWithDuration(userID int64, email, role string, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string and returns its claims.
//
// Checks performed: signature integrity, HS256 algorithm (rejects
// algorithm-confusion tokens), issuer, expiry present and in the future,
// non-empty subject. Every failure collapses to an error — the guard layer
// maps all of them to a single Unauthorized outcome so callers cannot probe
// which check failed.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return c, nil
}
