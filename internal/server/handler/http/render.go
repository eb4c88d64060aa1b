package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"
)

//go:embed views/*.html
var viewFS embed.FS

// Views renders the server-side HTML pages.
type Views struct {
	tmpl *template.Template
	log  *zap.Logger
}

// NewViews parses the embedded page templates.
func NewViews(log *zap.Logger) (*Views, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"markdown": RenderMarkdown,
		"date":     func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 UTC") },
	}).ParseFS(viewFS, "views/*.html")
	if err != nil {
		return nil, err
	}
	return &Views{tmpl: tmpl, log: log}, nil
}

// Render executes the named page with data and writes it with status.
// Output is buffered so a template failure becomes a plain 500.
func (v *Views) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		v.log.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Status  int
	Message string
}

// NotFound renders the not-found page.
func (v *Views) NotFound(w http.ResponseWriter) {
	v.Render(w, http.StatusNotFound, "error.html", errorView{Status: http.StatusNotFound, Message: "not found"})
}

// InternalError renders the generic failure page. The cause is not shown.
func (v *Views) InternalError(w http.ResponseWriter) {
	v.Render(w, http.StatusInternalServerError, "error.html", errorView{
		Status:  http.StatusInternalServerError,
		Message: "something went wrong",
	})
}
