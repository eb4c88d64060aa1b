package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// mustViews parses the embedded templates or panics.
func mustViews(log *zap.Logger) *Views {
	v, err := NewViews(log)
	if err != nil {
		panic(err)
	}
	return v
}

func TestViews_ErrorPages(t *testing.T) {
	views := mustViews(zap.NewNop())

	rec := httptest.NewRecorder()
	views.NotFound(rec)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "not found")

	rec = httptest.NewRecorder()
	views.InternalError(rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "something went wrong")
}

func TestViews_UnknownTemplate(t *testing.T) {
	rec := httptest.NewRecorder()
	mustViews(zap.NewNop()).Render(rec, http.StatusOK, "missing.html", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
