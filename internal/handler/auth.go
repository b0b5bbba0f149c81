package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/city-watch/user-management/internal/apperror"
	"github.com/city-watch/user-management/internal/auth"
	"github.com/city-watch/user-management/internal/metrics"
	"github.com/city-watch/user-management/internal/service"
)

// AuthHandler serves registration, login and the authenticated profile.
type AuthHandler struct {
	auths  *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auths *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auths: auths, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is shared by register and login: an account summary plus a
// fresh bearer token.
type authResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

type profileResponse struct {
	UserID          int64  `json:"user_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	TotalPoints     int64  `json:"total_points"`
	SpendablePoints int64  `json:"spendable_points"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/v1/register
// 201 with account summary + token; 400 on missing fields or an email that
// is already registered.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if req.Name == "" {
		writeError(w, apperror.ValidationFailed("name", "name is required"))
		return
	}
	if !validEmail(req.Email) {
		writeError(w, apperror.ValidationFailed("email", "a valid email is required"))
		return
	}
	if req.Password == "" {
		writeError(w, apperror.ValidationFailed("password", "password is required"))
		return
	}

	result, err := h.auths.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			h.logger.Error("register failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	metrics.Registrations.Inc()

	writeJSON(w, http.StatusCreated, authResponse{
		UserID: result.User.ID,
		Name:   result.User.Name,
		Email:  result.User.Email,
		Role:   result.User.Role,
		Token:  result.Token,
	})
}

// HandleLogin authenticates credentials and issues a fresh token.
//
// HTTP: POST /api/v1/login
// 200 with account summary + token; 401 "Invalid credentials" for both an
// unknown email and a wrong password, indistinguishably.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, apperror.ValidationFailed("body", "email and password are required"))
		return
	}

	result, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			metrics.Logins.WithLabelValues("failure").Inc()
		} else {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()

	writeJSON(w, http.StatusOK, authResponse{
		UserID: result.User.ID,
		Name:   result.User.Name,
		Email:  result.User.Email,
		Role:   result.User.Role,
		Token:  result.Token,
	})
}

// HandleMe returns the authenticated account's profile.
//
// HTTP: GET /api/v1/profile/me
// Auth: required — RequireAuth has verified the token and stored the claims
// in the context; this handler resolves them to the current account record.
// A valid token whose subject no longer exists is a 401, not a 404.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but fail closed anyway.
		writeError(w, apperror.Unauthorized("Invalid or expired token"))
		return
	}

	user, err := h.auths.UserFromClaims(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		TotalPoints:     user.TotalPoints,
		SpendablePoints: user.SpendablePoints,
	})
}

// validEmail is a shallow shape check (something@something). Real
// deliverability is the mail system's problem, not this service's.
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1
}
