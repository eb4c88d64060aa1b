package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTodo/internal/middleware"
	"github.com/atinyakov/GophTodo/internal/models"
	"github.com/atinyakov/GophTodo/internal/service"
)

// fakeTaskService records the owner and input of each call.
type fakeTaskService struct {
	owner models.Identity
	id    int64
	query string
	input service.TaskInput

	tasks []models.Task
	task  *models.Task
	err   error
}

func (f *fakeTaskService) List(ctx context.Context, owner models.Identity) ([]models.Task, error) {
	f.owner = owner
	return f.tasks, f.err
}
func (f *fakeTaskService) Search(ctx context.Context, owner models.Identity, query string) ([]models.Task, error) {
	f.owner, f.query = owner, query
	return f.tasks, f.err
}
func (f *fakeTaskService) Create(ctx context.Context, owner models.Identity, in service.TaskInput) (*models.Task, error) {
	f.owner, f.input = owner, in
	return f.task, f.err
}
func (f *fakeTaskService) Get(ctx context.Context, owner models.Identity, id int64) (*models.Task, error) {
	f.owner, f.id = owner, id
	return f.task, f.err
}
func (f *fakeTaskService) Edit(ctx context.Context, owner models.Identity, id int64, in service.TaskInput) error {
	f.owner, f.id, f.input = owner, id, in
	return f.err
}
func (f *fakeTaskService) ToggleComplete(ctx context.Context, owner models.Identity, id int64) (bool, error) {
	f.owner, f.id = owner, id
	return true, f.err
}
func (f *fakeTaskService) Delete(ctx context.Context, owner models.Identity, id int64) error {
	f.owner, f.id = owner, id
	return f.err
}

var carol = models.Identity{UserID: 9, Username: "carol"}

// todoRouter mounts the task handlers with carol as the resolved identity.
func todoRouter(svc *fakeTaskService) http.Handler {
	h := &TodoHandler{TaskService: svc, Views: mustViews(zap.NewNop()), Logger: zap.NewNop()}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), carol)))
		})
	})
	r.Get("/todo/", h.List)
	r.Get("/todo/search", h.Search)
	r.Get("/todo/create", h.CreatePage)
	r.Post("/todo/create", h.Create)
	r.Get("/todo/edit/{id}", h.EditPage)
	r.Post("/todo/edit/{id}", h.Edit)
	r.Get("/todo/delete/{id}", h.Delete)
	r.Get("/todo/complete/{id}", h.Complete)
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTodoHandler_List(t *testing.T) {
	svc := &fakeTaskService{tasks: []models.Task{
		{ID: 1, Title: "Buy milk", Description: "**2L**", Important: true, CreatedAt: time.Now()},
		{ID: 2, Title: "<script>x</script>", Completed: true, CreatedAt: time.Now()},
	}}

	rec := serve(todoRouter(svc), httptest.NewRequest(http.MethodGet, "/todo/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, carol, svc.owner)
	assert.Less(t, strings.Index(body, "Buy milk"), strings.Index(body, "&lt;script&gt;"))
	assert.Contains(t, body, "<strong>2L</strong>")
	assert.NotContains(t, body, "<script>x</script>")
	assert.Contains(t, body, `href="/todo/complete/1"`)
}

func TestTodoHandler_Search(t *testing.T) {
	svc := &fakeTaskService{}

	rec := serve(todoRouter(svc), httptest.NewRequest(http.MethodGet, "/todo/search?query=milk", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "milk", svc.query)
	assert.Equal(t, carol, svc.owner)
	assert.Contains(t, rec.Body.String(), `value="milk"`)
}

func TestTodoHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeTaskService{task: &models.Task{ID: 1}}
		req := postForm("/todo/create", url.Values{"title": {"Buy milk"}, "is_important": {"on"}})

		rec := serve(todoRouter(svc), req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/todo/", rec.Header().Get("Location"))
		assert.Equal(t, service.TaskInput{Title: "Buy milk", Important: true}, svc.input)
		assert.Equal(t, carol, svc.owner)
	})

	t.Run("missing title", func(t *testing.T) {
		svc := &fakeTaskService{err: models.ErrTitleRequired}
		req := postForm("/todo/create", url.Values{"title": {" "}, "description": {"keep me"}})

		rec := serve(todoRouter(svc), req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), models.ErrTitleRequired.Error())
		assert.Contains(t, rec.Body.String(), "keep me")
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := &fakeTaskService{err: errors.New("db down")}
		rec := serve(todoRouter(svc), postForm("/todo/create", url.Values{"title": {"x"}}))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestTodoHandler_EditPage(t *testing.T) {
	svc := &fakeTaskService{task: &models.Task{ID: 4, Title: "Old", Description: "desc", Important: true}}

	rec := serve(todoRouter(svc), httptest.NewRequest(http.MethodGet, "/todo/edit/4", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), svc.id)
	assert.Contains(t, rec.Body.String(), `action="/todo/edit/4"`)
	assert.Contains(t, rec.Body.String(), `value="Old"`)
	assert.Contains(t, rec.Body.String(), "checked")
}

func TestTodoHandler_Edit(t *testing.T) {
	svc := &fakeTaskService{}
	req := postForm("/todo/edit/4", url.Values{"title": {"New"}, "description": {"d"}, "is_important": {"true"}})

	rec := serve(todoRouter(svc), req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, int64(4), svc.id)
	assert.Equal(t, service.TaskInput{Title: "New", Description: "d", Important: true}, svc.input)
}

func TestTodoHandler_NotFound(t *testing.T) {
	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/todo/edit/404", nil),
		postForm("/todo/edit/404", url.Values{"title": {"x"}}),
		httptest.NewRequest(http.MethodGet, "/todo/delete/404", nil),
		httptest.NewRequest(http.MethodGet, "/todo/complete/404", nil),
		httptest.NewRequest(http.MethodGet, "/todo/delete/abc", nil),
		httptest.NewRequest(http.MethodGet, "/todo/complete/-1", nil),
	}

	for _, req := range requests {
		t.Run(req.Method+" "+req.URL.Path, func(t *testing.T) {
			svc := &fakeTaskService{err: models.ErrNotFound}
			rec := serve(todoRouter(svc), req)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "not found")
		})
	}
}

func TestTodoHandler_DeleteAndComplete(t *testing.T) {
	for _, path := range []string{"/todo/delete/3", "/todo/complete/3"} {
		t.Run(path, func(t *testing.T) {
			svc := &fakeTaskService{}
			rec := serve(todoRouter(svc), httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/todo/", rec.Header().Get("Location"))
			assert.Equal(t, int64(3), svc.id)
			assert.Equal(t, carol, svc.owner)
		})
	}
}

func TestCheckbox(t *testing.T) {
	for v, want := range map[string]bool{"on": true, "true": true, "1": true, "": false, "off": false, "false": false} {
		assert.Equal(t, want, checkbox(v), "checkbox(%q)", v)
	}
}
