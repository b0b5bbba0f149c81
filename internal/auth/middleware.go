package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// errNoToken means the request presented no bearer credentials at all.
var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the claims stored in a request context.
type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the token from the "Authorization: Bearer <token>" header,
// verifies it, and stores the claims in the request context. A missing,
// malformed, tampered or expired token ends the chain with a single generic
// 401 — the response never distinguishes which check failed.
//
// Note the middleware validates the token only; whether the subject still
// exists is decided by the handler when it looks the account up.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"Invalid or expired token"}`))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the verified token claims from the request
// context. Returns (nil, false) when the request carried no valid token.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// extractClaims reads the Authorization header and verifies the bearer token.
func extractClaims(r *http.Request, tokens *TokenService) (*Claims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, errNoToken
	}

	return tokens.Verify(token)
}
