// Package repository declares the storage interfaces the service layer
// depends on. The concrete implementation lives in repository/sqlite.
package repository

import (
	"context"

	"github.com/city-watch/user-management/internal/model"
)

// PointsResult is returned by AddPoints with the outcome of one applied
// gamification event.
type PointsResult struct {
	PointsAdded int64
	NewTotal    int64
	// Duplicate is true when the event ID was already processed; in that
	// case PointsAdded is 0 and NewTotal is the unchanged balance.
	Duplicate bool
}

// UserRepository is the persistence contract for accounts and their point
// balances.
type UserRepository interface {
	// Create inserts a new account. The store's UNIQUE(email) constraint is
	// the authoritative duplicate guard: concurrent registrations with the
	// same email are resolved by the second insert failing, surfaced as
	// apperror.ErrConflict. On success the user's ID and CreatedAt are set.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns the account with the given email, or
	// apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns the account with the given ID, or apperror.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// Top returns up to n accounts ordered by total_points descending,
	// ties broken by user_id ascending so results are reproducible.
	Top(ctx context.Context, n int) ([]model.User, error)

	// AddPoints atomically increments both point counters of one account by
	// the event's value, recording the event ID for replay detection. The
	// read-modify-write happens inside a single transaction — two concurrent
	// events for the same account cannot lose an update. Unknown account →
	// apperror.ErrNotFound with no side effects.
	AddPoints(ctx context.Context, userID int64, eventID string, eventType model.EventType, points int64) (*PointsResult, error)

	// Ping verifies store connectivity (readiness probe).
	Ping(ctx context.Context) error

	// Tables lists the table names present in the store (diagnostics).
	Tables(ctx context.Context) ([]string, error)
}
