package handler

import (
	"log/slog"
	"net/http"

	"github.com/city-watch/user-management/internal/apperror"
	"github.com/city-watch/user-management/internal/repository"
)

// HealthHandler serves the service banner, liveness/readiness probes and
// the database diagnostic endpoint.
type HealthHandler struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(users repository.UserRepository, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{users: users, logger: logger}
}

// HandleRoot returns the service banner.
//
// HTTP: GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Civic User Management Service is running.",
	})
}

// HandleLive is the liveness probe — the process is up.
//
// HTTP: GET /health/live
func (h *HealthHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReady is the readiness probe — verifies the store answers queries.
// A failing store is a 503, never a crash.
//
// HTTP: GET /health/ready
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Ping(r.Context()); err != nil {
		h.logger.Error("readiness check failed", slog.String("error", err.Error()))
		writeError(w, apperror.Unavailable("Database not ready"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// HandleDBCheck lists the tables the store currently holds.
//
// HTTP: GET /db-check
func (h *HealthHandler) HandleDBCheck(w http.ResponseWriter, r *http.Request) {
	tables, err := h.users.Tables(r.Context())
	if err != nil {
		h.logger.Error("db-check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "error",
			"details": "could not inspect database",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "connected",
		"tables": tables,
	})
}
