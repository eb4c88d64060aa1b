package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTodo/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// LoginPath is where anonymous callers are redirected.
const LoginPath = "/auth/"

// NewRouter constructs and returns an HTTP handler that serves the to-do
// application.
//
// Routes:
//
//	GET  /                    → redirect to /todo/
//	GET  /metrics             → Prometheus metrics
//	GET  /auth/               → authHandler.LoginPage
//	POST /auth/               → authHandler.Login
//	GET  /auth/logout         → authHandler.Logout
//	GET  /auth/register       → authHandler.RegisterPage
//	POST /auth/register       → authHandler.Register
//	POST /auth/token          → authHandler.Token
//	GET  /todo/               → todoHandler.List            (session)
//	GET  /todo/search         → todoHandler.Search          (session)
//	GET  /todo/create         → todoHandler.CreatePage      (session)
//	POST /todo/create         → todoHandler.Create          (session)
//	GET  /todo/edit/{id}      → todoHandler.EditPage        (session)
//	POST /todo/edit/{id}      → todoHandler.Edit            (session)
//	GET  /todo/delete/{id}    → todoHandler.Delete          (session)
//	GET  /todo/complete/{id}  → todoHandler.Complete        (session)
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. SecurityHeaders
//  3. WithRequestLogging(logger)
//  4. Metrics
//  5. Session(resolver, logger): resolves the session cookie into an identity
//  6. RequireSession (only /todo): redirects anonymous callers to /auth/
func NewRouter(
	authHandler *AuthHandler,
	todoHandler *TodoHandler,
	resolver middleware.SessionResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Session(resolver, logger))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/todo/", http.StatusFound)
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/auth", func(r chi.Router) {
		r.Get("/", authHandler.LoginPage)
		r.Post("/", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
		r.Get("/register", authHandler.RegisterPage)
		r.Post("/register", authHandler.Register)
		r.Post("/token", authHandler.Token)
	})

	r.Route("/todo", func(r chi.Router) {
		r.Use(middleware.RequireSession(LoginPath))

		r.Get("/", todoHandler.List)
		r.Get("/search", todoHandler.Search)
		r.Get("/create", todoHandler.CreatePage)
		r.Post("/create", todoHandler.Create)
		r.Get("/edit/{id}", todoHandler.EditPage)
		r.Post("/edit/{id}", todoHandler.Edit)
		r.Get("/delete/{id}", todoHandler.Delete)
		r.Get("/complete/{id}", todoHandler.Complete)
	})

	return r
}
