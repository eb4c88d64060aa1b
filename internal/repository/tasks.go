package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophTodo/internal/models"
)

const taskColumns = `id, user_id, title, description, is_important, is_completed, created_date`

// taskOrder puts important tasks first, newest first within each group.
const taskOrder = ` ORDER BY is_important DESC, created_date DESC, id DESC`

// PostgresTaskRepository implements task persistence against PostgreSQL.
// Every query is scoped to the owning user.
type PostgresTaskRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTaskRepository creates a new PostgresTaskRepository using the provided *sql.DB.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

// ListByOwner returns all tasks of userID in display order.
func (r *PostgresTaskRepository) ListByOwner(ctx context.Context, userID int64) ([]models.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE user_id = $1`+taskOrder,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	return scanTasks(rows)
}

// SearchByOwner returns the tasks of userID whose title and description
// both contain query as a literal substring, in display order.
func (r *PostgresTaskRepository) SearchByOwner(ctx context.Context, userID int64, query string) ([]models.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM todos
		  WHERE user_id = $1
		    AND strpos(title, $2) > 0
		    AND strpos(description, $2) > 0`+taskOrder,
		userID, query,
	)
	if err != nil {
		return nil, fmt.Errorf("SearchByOwner: %w", err)
	}
	return scanTasks(rows)
}

// Create inserts t and returns its new id.
func (r *PostgresTaskRepository) Create(ctx context.Context, t *models.Task) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO todos (user_id, title, description, is_important, is_completed, created_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, t.UserID, t.Title, t.Description, t.Important, t.Completed, t.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

// GetByID fetches a single task owned by userID.
// Returns models.ErrNotFound if the task is missing or belongs to someone else.
func (r *PostgresTaskRepository) GetByID(ctx context.Context, userID, id int64) (*models.Task, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// Update overwrites the editable fields of the task identified by t.ID and t.UserID.
func (r *PostgresTaskRepository) Update(ctx context.Context, t *models.Task) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE todos
		   SET title = $1, description = $2, is_important = $3, is_completed = $4
		 WHERE id = $5 AND user_id = $6
	`, t.Title, t.Description, t.Important, t.Completed, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return expectOneRow(res, "Update")
}

// ToggleCompleted flips the completion flag in a single statement and
// returns the new value.
func (r *PostgresTaskRepository) ToggleCompleted(ctx context.Context, userID, id int64) (bool, error) {
	var completed bool
	err := r.DB.QueryRowContext(ctx, `
		UPDATE todos SET is_completed = NOT is_completed
		 WHERE id = $1 AND user_id = $2
		RETURNING is_completed
	`, id, userID).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, models.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("ToggleCompleted: %w", err)
	}
	return completed, nil
}

// Delete removes the task owned by userID.
func (r *PostgresTaskRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOneRow(res, "Delete")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var t models.Task
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Important, &t.Completed, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tasks, nil
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
