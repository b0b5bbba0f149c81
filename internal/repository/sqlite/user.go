package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/city-watch/user-management/internal/apperror"
	"github.com/city-watch/user-management/internal/model"
	"github.com/city-watch/user-management/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `user_id, name, email, password_hash, role, total_points, spendable_points, created_at`

// Create inserts a new account row.
//
// The application-level existence check in the service layer is advisory
// only; the UNIQUE(email) constraint here is what actually resolves a race
// between two concurrent registrations. A constraint violation is translated
// to apperror.DuplicateEmail so the boundary can answer 400.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.DefaultRole
	}
	user.CreatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, total_points, spendable_points, created_at)
		 VALUES (?, ?, ?, ?, 0, 0, ?)`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return apperror.DuplicateEmail()
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id
	user.TotalPoints = 0
	user.SpendablePoints = 0

	return nil
}

// GetByEmail retrieves an account by its unique email (case-sensitive, as
// stored). Returns apperror.ErrNotFound when no row matches.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("user not found with email %s", email),
			}
		}
		return nil, fmt.Errorf("sqlite: getting user by email %q: %w", email, err)
	}

	return u, nil
}

// GetByID retrieves an account by its numeric ID.
// Returns apperror.ErrNotFound when no row matches.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	return u, nil
}

// Top returns up to n accounts ordered by total_points descending.
// Ties break on user_id ascending so leaderboard output is deterministic.
func (db *DB) Top(ctx context.Context, n int) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY total_points DESC, user_id ASC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying top users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning top user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating top users: %w", err)
	}

	return users, nil
}

// AddPoints applies one gamification event inside a single transaction:
//
//  1. verify the account exists (so an unknown ID leaves no trace)
//  2. record the event ID; an already-recorded ID short-circuits as a
//     duplicate and awards nothing
//  3. increment both counters in one UPDATE — the read-modify-write never
//     leaves the database, so concurrent events cannot lose an update
func (db *DB) AddPoints(ctx context.Context, userID int64, eventID string, eventType model.EventType, points int64) (*repository.PointsResult, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning points transaction: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE user_id = ?`, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, fmt.Errorf("sqlite: checking user %d: %w", userID, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed_events (event_id, user_id, event_type, points)
		 VALUES (?, ?, ?, ?)`,
		eventID, userID, string(eventType), points)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recording event %q: %w", eventID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking event insert: %w", err)
	}
	if inserted == 0 {
		// Replayed event: report the current balance untouched.
		var total int64
		if err := tx.QueryRowContext(ctx,
			`SELECT total_points FROM users WHERE user_id = ?`, userID).Scan(&total); err != nil {
			return nil, fmt.Errorf("sqlite: reading balance for user %d: %w", userID, err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("sqlite: committing duplicate event: %w", err)
		}
		return &repository.PointsResult{PointsAdded: 0, NewTotal: total, Duplicate: true}, nil
	}

	var newTotal int64
	err = tx.QueryRowContext(ctx,
		`UPDATE users
		 SET total_points = total_points + ?, spendable_points = spendable_points + ?
		 WHERE user_id = ?
		 RETURNING total_points`,
		points, points, userID).Scan(&newTotal)
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding %d points to user %d: %w", points, userID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing points for user %d: %w", userID, err)
	}

	return &repository.PointsResult{PointsAdded: points, NewTotal: newTotal}, nil
}

// Ping verifies connectivity for the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	var one int
	if err := db.conn.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Tables lists user-visible table names, for the /db-check diagnostic.
func (db *DB) Tables(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tables: %w", err)
	}

	return tables, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.TotalPoints,
		&u.SpendablePoints,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given column. modernc.org/sqlite surfaces constraint failures as
// driver errors whose message names the violated column.
func isUniqueViolation(err error, column string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
