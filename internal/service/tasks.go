package service

import (
	"context"
	"strings"
	"time"

	"github.com/atinyakov/GophTodo/internal/models"
)

// TaskRepository defines the owner-scoped persistence operations needed by
// the TaskService. Lookups of a task owned by another user behave as if the
// task did not exist.
type TaskRepository interface {
	// ListByOwner returns the tasks of userID, important first, newest first.
	ListByOwner(ctx context.Context, userID int64) ([]models.Task, error)
	// SearchByOwner is ListByOwner restricted to tasks whose title and
	// description both contain query.
	SearchByOwner(ctx context.Context, userID int64, query string) ([]models.Task, error)
	Create(ctx context.Context, t *models.Task) (int64, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	ToggleCompleted(ctx context.Context, userID, id int64) (bool, error)
	Delete(ctx context.Context, userID, id int64) error
}

// TaskInput is the submitted create or edit form.
type TaskInput struct {
	Title       string
	Description string
	Important   bool
}

func (in TaskInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.ErrTitleRequired
	}
	return nil
}

// TaskService implements the task operations of an authenticated user.
type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

// NewTaskService constructs a TaskService with the provided TaskRepository.
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

// List returns the owner's tasks in display order.
func (s *TaskService) List(ctx context.Context, owner models.Identity) ([]models.Task, error) {
	return s.repo.ListByOwner(ctx, owner.UserID)
}

// Search returns the owner's tasks whose title and description both
// contain query.
func (s *TaskService) Search(ctx context.Context, owner models.Identity, query string) ([]models.Task, error) {
	return s.repo.SearchByOwner(ctx, owner.UserID, query)
}

// Create stores a new, uncompleted task for owner stamped with the current
// UTC time.
func (s *TaskService) Create(ctx context.Context, owner models.Identity, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &models.Task{
		UserID:      owner.UserID,
		Title:       in.Title,
		Description: in.Description,
		Important:   in.Important,
		CreatedAt:   s.now().UTC(),
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

// Get returns one of the owner's tasks.
func (s *TaskService) Get(ctx context.Context, owner models.Identity, id int64) (*models.Task, error) {
	return s.repo.GetByID(ctx, owner.UserID, id)
}

// Edit overwrites title, description and importance. Editing always marks
// the task as not completed.
func (s *TaskService) Edit(ctx context.Context, owner models.Identity, id int64, in TaskInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, &models.Task{
		ID:          id,
		UserID:      owner.UserID,
		Title:       in.Title,
		Description: in.Description,
		Important:   in.Important,
		Completed:   false,
	})
}

// ToggleComplete flips the completion flag and returns the new value.
func (s *TaskService) ToggleComplete(ctx context.Context, owner models.Identity, id int64) (bool, error) {
	return s.repo.ToggleCompleted(ctx, owner.UserID, id)
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, owner models.Identity, id int64) error {
	return s.repo.Delete(ctx, owner.UserID, id)
}
