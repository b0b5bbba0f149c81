package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/city-watch/user-management/internal/apperror"
	"github.com/city-watch/user-management/internal/model"
	"github.com/city-watch/user-management/internal/service"
)

// EventsHandler receives gamification events from the report service.
type EventsHandler struct {
	points *service.PointsService
	logger *slog.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(points *service.PointsService, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{points: points, logger: logger}
}

type eventRequest struct {
	UserID    int64  `json:"user_id"`
	EventType string `json:"event_type"`
	// EventID is optional; callers that supply one get replay protection,
	// callers that don't get a generated ID echoed back.
	EventID string `json:"event_id,omitempty"`
}

type eventResponse struct {
	Message     string `json:"message"`
	UserID      int64  `json:"user_id"`
	EventID     string `json:"event_id"`
	PointsAdded int64  `json:"points_added"`
	NewTotal    int64  `json:"new_total"`
}

// HandleEvent applies one scored event to an account.
//
// HTTP: POST /internal/events
// 200 with points added and the new total; 404 for an unknown account;
// 422 for an event type outside the closed enumeration — rejected here at
// the boundary, before the ledger runs.
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	eventType := model.EventType(req.EventType)
	if !eventType.Valid() {
		writeError(w, apperror.UnprocessableEntity("event_type",
			"event_type must be one of: new_report, confirm_issue, report_resolved"))
		return
	}

	result, err := h.points.ApplyEvent(r.Context(), req.UserID, req.EventID, eventType)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Event processed successfully"
	if result.Duplicate {
		message = "Event already processed"
	}

	writeJSON(w, http.StatusOK, eventResponse{
		Message:     message,
		UserID:      result.UserID,
		EventID:     result.EventID,
		PointsAdded: result.PointsAdded,
		NewTotal:    result.NewTotal,
	})
}
