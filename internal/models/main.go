// Package models defines the core data structures for users, tasks and
// authenticated identities.
package models

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique identifier assigned at creation.
	ID int64
	// Name is the user's first name.
	Name string
	// Surname is the user's family name.
	Surname string
	// Username is the unique login name chosen by the user.
	Username string
	// PasswordHash is the bcrypt digest of the password. The raw password is never stored.
	PasswordHash string
	// Admin is the administrative flag. No authorization check reads it.
	Admin bool
}

// Task is a single to-do entry owned by one user.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Important   bool
	Completed   bool
	// CreatedAt is set once at creation, always in UTC.
	CreatedAt time.Time
}

// Identity is the caller resolved from a verified session token.
// It is trusted for the rest of the request without re-reading the user record.
type Identity struct {
	UserID   int64
	Username string
}
