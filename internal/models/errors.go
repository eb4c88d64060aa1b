package models

import "errors"

var (
	// Repository-level errors.
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("this username already exists")

	// Flow-level errors surfaced to forms.
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("user not found")
	ErrTitleRequired      = errors.New("title is required")

	// ErrInvalidToken covers malformed, unsigned, expired and revoked tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)
