package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/GophTodo/internal/models"
)

// MemoryStore keeps users, tasks and revoked tokens in process memory. It
// satisfies the same contracts as the PostgreSQL repositories and is used
// when no database is configured.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[string]models.User
	nextUserID int64

	tasks      map[int64]models.Task
	nextTaskID int64

	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]models.User),
		tasks:   make(map[int64]models.Task),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// UserExists reports whether username is registered.
func (m *MemoryStore) UserExists(_ context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[username]
	return ok, nil
}

// CreateUser stores u under a new id. Usernames are unique.
func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return 0, models.ErrUserExists
	}
	m.nextUserID++
	stored := *u
	stored.ID = m.nextUserID
	m.users[u.Username] = stored
	return stored.ID, nil
}

// GetUserByUsername returns models.ErrNotFound for unknown usernames.
func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

// ListByOwner returns the tasks of userID, important first, newest first.
func (m *MemoryStore) ListByOwner(_ context.Context, userID int64) ([]models.Task, error) {
	return m.filter(userID, func(models.Task) bool { return true }), nil
}

// SearchByOwner returns the tasks of userID whose title and description
// both contain query.
func (m *MemoryStore) SearchByOwner(_ context.Context, userID int64, query string) ([]models.Task, error) {
	return m.filter(userID, func(t models.Task) bool {
		return strings.Contains(t.Title, query) && strings.Contains(t.Description, query)
	}), nil
}

func (m *MemoryStore) filter(userID int64, keep func(models.Task) bool) []models.Task {
	m.mu.RLock()
	var out []models.Task
	for _, t := range m.tasks {
		if t.UserID == userID && keep(t) {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Important != b.Important {
			return a.Important
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

// Create stores t under a new id.
func (m *MemoryStore) Create(_ context.Context, t *models.Task) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTaskID++
	stored := *t
	stored.ID = m.nextTaskID
	stored.CreatedAt = stored.CreatedAt.UTC()
	m.tasks[stored.ID] = stored
	return stored.ID, nil
}

// GetByID returns models.ErrNotFound if the task is missing or owned by someone else.
func (m *MemoryStore) GetByID(_ context.Context, userID, id int64) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

// Update overwrites the editable fields of the task identified by t.ID and t.UserID.
func (m *MemoryStore) Update(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return models.ErrNotFound
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Important = t.Important
	cur.Completed = t.Completed
	m.tasks[t.ID] = cur
	return nil
}

// ToggleCompleted flips the completion flag and returns the new value.
func (m *MemoryStore) ToggleCompleted(_ context.Context, userID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return false, models.ErrNotFound
	}
	t.Completed = !t.Completed
	m.tasks[id] = t
	return t.Completed, nil
}

// Delete removes the task owned by userID.
func (m *MemoryStore) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

// Revoke marks tokenID as revoked until expiresAt. Entries that have
// already expired are dropped on the way.
func (m *MemoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.revoked {
		if !now.Before(exp) {
			delete(m.revoked, id)
		}
	}
	m.revoked[tokenID] = expiresAt
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
// Expired entries are dropped on lookup.
func (m *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(exp) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
