package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresRevocationRepository records revoked token ids in PostgreSQL.
// Expired rows are ignored on lookup and purged by db.StartRevocationCleaner.
type PostgresRevocationRepository struct {
	DB *sql.DB
}

// NewPostgresRevocationRepository creates a new PostgresRevocationRepository.
func NewPostgresRevocationRepository(db *sql.DB) *PostgresRevocationRepository {
	return &PostgresRevocationRepository{DB: db}
}

// Revoke marks tokenID as revoked until expiresAt. Revoking twice is a no-op.
func (r *PostgresRevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO revoked_tokens (token_id, expires_at) VALUES ($1, $2) ON CONFLICT (token_id) DO NOTHING`,
		tokenID, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
func (r *PostgresRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = $1 AND expires_at > now())`,
		tokenID,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("IsRevoked: %w", err)
	}
	return revoked, nil
}
