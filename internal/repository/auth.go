// Package repository provides PostgreSQL persistence for users, tasks and
// revoked session tokens.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/GophTodo/internal/models"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint breach.
const uniqueViolation = "23505"

// PostgresAuthRepository stores user credentials in PostgreSQL.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists checks whether a user with the specified username exists in the database.
func (r *PostgresAuthRepository) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

// CreateUser inserts u and returns the assigned id. A username already taken
// by another row, including one inserted concurrently after the caller's
// existence check, yields models.ErrUserExists.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (name, surname, username, hashed_password, admin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		u.Name, u.Surname, u.Username, u.PasswordHash, u.Admin,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, models.ErrUserExists
		}
		return 0, fmt.Errorf("CreateUser: %w", err)
	}
	return id, nil
}

// GetUserByUsername loads the user with the given username.
// It returns models.ErrNotFound when there is no such user.
func (r *PostgresAuthRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, name, surname, username, hashed_password, admin
		   FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Name, &u.Surname, &u.Username, &u.PasswordHash, &u.Admin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return &u, nil
}
