// Package service contains the business logic, sitting between the HTTP
// handlers and the repository/auth utilities:
//
//	handlers (HTTP) → services (rules) → repository (DB)
//	                ↘ auth (bcrypt, JWT)
//
// Services return apperror-typed outcomes; they never touch HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/city-watch/user-management/internal/apperror"
	"github.com/city-watch/user-management/internal/auth"
	"github.com/city-watch/user-management/internal/model"
	"github.com/city-watch/user-management/internal/repository"
)

// AuthService handles registration, login and request authentication.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account and its freshly issued token so the
// handler can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account and issues its first token.
//
// The email duplicate check is ultimately the database's UNIQUE constraint —
// Create surfaces apperror.ErrConflict when a concurrent registration wins
// the race. An empty role defaults to "Citizen".
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*AuthResult, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password for %s: %w", email, err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("role", user.Role),
	)

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a fresh token.
//
// An unknown email and a wrong password return the identical
// InvalidCredentials outcome — response content and shape must not reveal
// which of the two failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate maps a bearer token to a verified account.
//
// Both failure modes collapse to Unauthorized: an invalid/expired token, and
// a valid token whose subject no longer exists. Email/role drift between
// issuance and now is accepted — the staleness window is bounded by the 24h
// token lifetime.
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*model.User, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}

	return s.UserFromClaims(ctx, claims)
}

// UserFromClaims resolves already-verified claims to the current account
// record. Used by handlers behind the RequireAuth middleware, which has
// verified the token and parked the claims in the request context.
func (s *AuthService) UserFromClaims(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}

	return user, nil
}

// Leaderboard returns the top n accounts by total points, ranked from 1.
func (s *AuthService) Leaderboard(ctx context.Context, n int) ([]model.User, error) {
	users, err := s.users.Top(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching leaderboard: %w", err)
	}
	return users, nil
}
