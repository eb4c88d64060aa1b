// Package middleware provides HTTP middlewares for session resolution,
// authorization, logging and metrics.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTodo/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// CookieName is the cookie carrying the session token.
const CookieName = "access_token"

// SessionResolver turns a raw session token into the caller's identity.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (*models.Identity, error)
}

// Session resolves the session cookie of every request. A verified identity
// is stored in the request context; any other outcome leaves the request
// anonymous. It never rejects a request by itself.
func Session(resolver SessionResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolver.Resolve(r.Context(), cookie.Value)
			switch {
			case err == nil:
				r = r.WithContext(WithIdentity(r.Context(), *id))
			case errors.Is(err, models.ErrInvalidToken):
				log.Debug("session token rejected", zap.String("path", r.URL.Path))
			default:
				log.Error("session resolution failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession redirects anonymous callers to loginPath with 302 Found.
// It must run after Session.
func RequireSession(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the identity stored by Session.
// The boolean is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
