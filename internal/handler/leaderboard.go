package handler

import (
	"log/slog"
	"net/http"

	"github.com/city-watch/user-management/internal/service"
)

// leaderboardSize is how many accounts the public leaderboard shows.
const leaderboardSize = 10

// LeaderboardHandler serves the public points leaderboard.
type LeaderboardHandler struct {
	auths  *service.AuthService
	logger *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(auths *service.AuthService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{auths: auths, logger: logger}
}

type leaderboardEntry struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	TotalPoints int64  `json:"total_points"`
}

type leaderboardResponse struct {
	Leaderboard []leaderboardEntry `json:"leaderboard"`
}

// HandleLeaderboard returns the top accounts by total points.
//
// HTTP: GET /api/v1/leaderboard (public)
// Ranks are 1-based in descending point order; ties are ordered by account
// ID so the output is stable across requests.
func (h *LeaderboardHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.auths.Leaderboard(r.Context(), leaderboardSize)
	if err != nil {
		h.logger.Error("leaderboard query failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	entries := make([]leaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, leaderboardEntry{
			Rank:        i + 1,
			Name:        u.Name,
			TotalPoints: u.TotalPoints,
		})
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}
