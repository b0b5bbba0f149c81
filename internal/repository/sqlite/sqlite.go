// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go translation of the SQLite C code — no CGo,
// so cross-compilation stays trivial and tests can run against ":memory:"
// databases with zero infrastructure.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath may be a file path (persistent) or ":memory:" (tests). Ping is
// called immediately so a bad path or permission problem surfaces at
// startup, not on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight; the default
	// rollback journal locks the whole file per write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Referential integrity for processed_events.user_id (and for the
	// surrounding system's issues/comments tables, which reference users).
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start; dedicated migration tooling is out of scope.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name             TEXT NOT NULL,
			email            TEXT NOT NULL UNIQUE,
			password_hash    TEXT NOT NULL,
			role             TEXT NOT NULL DEFAULT 'Citizen',
			total_points     INTEGER NOT NULL DEFAULT 0,
			spendable_points INTEGER NOT NULL DEFAULT 0,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_total_points ON users(total_points);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// processed_events records every applied gamification event by ID so a
	// redelivered event cannot award points twice.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS processed_events (
			event_id     TEXT PRIMARY KEY,
			user_id      INTEGER NOT NULL REFERENCES users(user_id),
			event_type   TEXT NOT NULL,
			points       INTEGER NOT NULL,
			processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_processed_events_user_id ON processed_events(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating processed_events table: %w", err)
	}

	return nil
}
