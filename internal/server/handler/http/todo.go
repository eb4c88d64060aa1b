package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTodo/internal/middleware"
	"github.com/atinyakov/GophTodo/internal/models"
	"github.com/atinyakov/GophTodo/internal/service"
)

// TaskService defines the task operations required by the TodoHandler.
// Every operation is scoped to owner; a task owned by someone else is
// reported as models.ErrNotFound.
type TaskService interface {
	List(ctx context.Context, owner models.Identity) ([]models.Task, error)
	Search(ctx context.Context, owner models.Identity, query string) ([]models.Task, error)
	Create(ctx context.Context, owner models.Identity, in service.TaskInput) (*models.Task, error)
	Get(ctx context.Context, owner models.Identity, id int64) (*models.Task, error)
	Edit(ctx context.Context, owner models.Identity, id int64, in service.TaskInput) error
	ToggleComplete(ctx context.Context, owner models.Identity, id int64) (bool, error)
	Delete(ctx context.Context, owner models.Identity, id int64) error
}

// TodoHandler handles the task pages. Its routes must be mounted behind
// middleware.RequireSession.
type TodoHandler struct {
	TaskService TaskService
	Views       *Views
	Logger      *zap.Logger
}

type todoView struct {
	ID          int64
	Title       string
	Description string
	Important   bool
	Completed   bool
	CreatedAt   time.Time
}

type indexView struct {
	Username string
	Query    string
	Todos    []todoView
}

type taskFormView struct {
	Msg         string
	ID          int64
	Title       string
	Description string
	Important   bool
}

// List renders the caller's tasks, important first, newest first.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.IdentityFromContext(r.Context())
	tasks, err := h.TaskService.List(r.Context(), owner)
	if err != nil {
		h.fail(w, "list tasks", err)
		return
	}
	h.Views.Render(w, http.StatusOK, "index.html", newIndexView(owner, "", tasks))
}

// Search renders the caller's tasks whose title and description both
// contain the "query" parameter.
func (h *TodoHandler) Search(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.IdentityFromContext(r.Context())
	query := r.FormValue("query")
	tasks, err := h.TaskService.Search(r.Context(), owner, query)
	if err != nil {
		h.fail(w, "search tasks", err)
		return
	}
	h.Views.Render(w, http.StatusOK, "index.html", newIndexView(owner, query, tasks))
}

// CreatePage renders the empty task form.
func (h *TodoHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, http.StatusOK, "create.html", taskFormView{})
}

// Create stores the submitted task and returns to the list.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.IdentityFromContext(r.Context())
	in := taskInput(r)

	_, err := h.TaskService.Create(r.Context(), owner, in)
	if errors.Is(err, models.ErrTitleRequired) {
		h.Views.Render(w, http.StatusOK, "create.html", newTaskFormView(0, in, err.Error()))
		return
	}
	if err != nil {
		h.fail(w, "create task", err)
		return
	}
	http.Redirect(w, r, "/todo/", http.StatusFound)
}

// EditPage renders the form for one of the caller's tasks.
func (h *TodoHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.IdentityFromContext(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.Views.NotFound(w)
		return
	}

	t, err := h.TaskService.Get(r.Context(), owner, id)
	if err != nil {
		h.fail(w, "load task", err)
		return
	}
	h.Views.Render(w, http.StatusOK, "edit.html", taskFormView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Important:   t.Important,
	})
}

// Edit overwrites one of the caller's tasks. The task becomes uncompleted.
func (h *TodoHandler) Edit(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.IdentityFromContext(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.Views.NotFound(w)
		return
	}
	in := taskInput(r)

	err := h.TaskService.Edit(r.Context(), owner, id, in)
	if errors.Is(err, models.ErrTitleRequired) {
		h.Views.Render(w, http.StatusOK, "edit.html", newTaskFormView(id, in, err.Error()))
		return
	}
	if err != nil {
		h.fail(w, "edit task", err)
		return
	}
	http.Redirect(w, r, "/todo/", http.StatusFound)
}

// Delete removes one of the caller's tasks.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.IdentityFromContext(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.Views.NotFound(w)
		return
	}
	if err := h.TaskService.Delete(r.Context(), owner, id); err != nil {
		h.fail(w, "delete task", err)
		return
	}
	http.Redirect(w, r, "/todo/", http.StatusFound)
}

// Complete toggles the completion flag of one of the caller's tasks.
func (h *TodoHandler) Complete(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.IdentityFromContext(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.Views.NotFound(w)
		return
	}
	if _, err := h.TaskService.ToggleComplete(r.Context(), owner, id); err != nil {
		h.fail(w, "toggle task", err)
		return
	}
	http.Redirect(w, r, "/todo/", http.StatusFound)
}

// fail renders the not-found page for models.ErrNotFound and logs anything else.
func (h *TodoHandler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		h.Views.NotFound(w)
		return
	}
	h.Logger.Error(op, zap.Error(err))
	h.Views.InternalError(w)
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func taskInput(r *http.Request) service.TaskInput {
	return service.TaskInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Important:   checkbox(r.PostFormValue("is_important")),
	}
}

// checkbox accepts the browser default "on" as well as boolean literals.
func checkbox(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func newIndexView(owner models.Identity, query string, tasks []models.Task) indexView {
	v := indexView{Username: owner.Username, Query: query, Todos: make([]todoView, 0, len(tasks))}
	for _, t := range tasks {
		v.Todos = append(v.Todos, todoView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Important:   t.Important,
			Completed:   t.Completed,
			CreatedAt:   t.CreatedAt,
		})
	}
	return v
}

func newTaskFormView(id int64, in service.TaskInput, msg string) taskFormView {
	return taskFormView{
		Msg:         msg,
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Important:   in.Important,
	}
}
