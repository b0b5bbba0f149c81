// Package model defines the data structures used throughout the application.
package model

import "time"

// DefaultRole is assigned to accounts that register without an explicit role.
const DefaultRole = "Citizen"

// User represents a registered account on the civic reporting platform.
//
// The primary key is a numeric ID assigned by the database. Email is unique
// (case-sensitive, as stored) — the UNIQUE constraint in the users table is
// the authoritative guard against duplicate registrations, not the
// application-level existence check.
//
// PasswordHash holds the bcrypt digest and is never serialized to JSON.
// TotalPoints only ever grows; SpendablePoints is reserved for future spend
// features and currently grows in lockstep with TotalPoints.
type User struct {
	ID              int64     `json:"user_id"          db:"user_id"`
	Name            string    `json:"name"             db:"name"`
	Email           string    `json:"email"            db:"email"`
	PasswordHash    string    `json:"-"                db:"password_hash"`
	Role            string    `json:"role"             db:"role"`
	TotalPoints     int64     `json:"total_points"     db:"total_points"`
	SpendablePoints int64     `json:"spendable_points" db:"spendable_points"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
}
