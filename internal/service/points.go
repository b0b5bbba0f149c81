package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/city-watch/user-management/internal/apperror"
	"github.com/city-watch/user-management/internal/metrics"
	"github.com/city-watch/user-management/internal/model"
	"github.com/city-watch/user-management/internal/repository"
)

// PointsService applies gamification events to account point balances.
type PointsService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewPointsService creates a PointsService.
func NewPointsService(users repository.UserRepository, logger *slog.Logger) *PointsService {
	return &PointsService{users: users, logger: logger}
}

// EventResult is the outcome of one applied gamification event.
type EventResult struct {
	UserID      int64
	EventID     string
	PointsAdded int64
	NewTotal    int64
	// Duplicate means the event ID was seen before; nothing was awarded.
	Duplicate bool
}

// ApplyEvent credits the fixed point value of eventType to the account.
//
// Unknown event kinds are rejected at the HTTP boundary before this method
// runs; a kind reaching here without a point value is a programming error.
// An empty eventID gets a generated xid — unique by construction, so the
// replay check is a no-op for callers that do not supply IDs, and every
// award is still traceable in processed_events. A replayed ID awards 0 and
// reports the unchanged total.
func (s *PointsService) ApplyEvent(ctx context.Context, userID int64, eventID string, eventType model.EventType) (*EventResult, error) {
	points, ok := eventType.Points()
	if !ok {
		return nil, apperror.UnprocessableEntity("event_type",
			fmt.Sprintf("unknown event type %q", eventType))
	}

	if eventID == "" {
		eventID = xid.New().String()
	}

	res, err := s.users.AddPoints(ctx, userID, eventID, eventType, points)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			metrics.EventsProcessed.WithLabelValues(string(eventType), metrics.OutcomeNotFound).Inc()
			return nil, err
		}
		return nil, fmt.Errorf("service/points: applying %s event for user %d: %w", eventType, userID, err)
	}

	if res.Duplicate {
		metrics.EventsProcessed.WithLabelValues(string(eventType), metrics.OutcomeDuplicate).Inc()
		s.logger.Warn("duplicate gamification event ignored",
			slog.String("eventID", eventID),
			slog.Int64("userID", userID),
		)
	} else {
		metrics.EventsProcessed.WithLabelValues(string(eventType), metrics.OutcomeAwarded).Inc()
		metrics.PointsAwarded.WithLabelValues(string(eventType)).Add(float64(res.PointsAdded))
		s.logger.Info("gamification event processed",
			slog.String("eventID", eventID),
			slog.Int64("userID", userID),
			slog.String("eventType", string(eventType)),
			slog.Int64("pointsAdded", res.PointsAdded),
			slog.Int64("newTotal", res.NewTotal),
		)
	}

	return &EventResult{
		UserID:      userID,
		EventID:     eventID,
		PointsAdded: res.PointsAdded,
		NewTotal:    res.NewTotal,
		Duplicate:   res.Duplicate,
	}, nil
}
