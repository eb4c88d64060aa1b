// Package http provides the HTML handlers for authentication and task
// management, and the chi router that serves them.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTodo/internal/middleware"
	"github.com/atinyakov/GophTodo/internal/models"
	"github.com/atinyakov/GophTodo/internal/service"
)

// User-facing messages of the login and registration forms.
const (
	msgUserNotFound     = "user not found"
	msgUsernameTaken    = "this username already exists"
	msgPasswordMismatch = "passwords do not match"
	msgLogoutSuccessful = "logout successful"
	msgUnknownError     = "unknown error"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a user; returns models.ErrUserExists or
	// models.ErrPasswordMismatch for rejected input.
	Register(ctx context.Context, in service.RegisterInput) error
	// Login returns a signed session token or models.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (string, error)
	// Logout revokes the given token if it is valid.
	Logout(ctx context.Context, raw string) error
}

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Views renders the login and registration pages.
	Views *Views
	// Logger records failures that are hidden from the user.
	Logger *zap.Logger
	// SecureCookie marks the session cookie Secure; set when serving TLS.
	SecureCookie bool
}

type loginView struct {
	Msg string
}

type registerView struct {
	Msg      string
	Name     string
	Surname  string
	Username string
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, http.StatusOK, "login.html", loginView{})
}

// Login handles the submitted login form. On success the session cookie is
// set and the caller is sent to the task list. Unknown users and wrong
// passwords get the same message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	token, err := h.AuthService.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		msg := msgUserNotFound
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.Logger.Debug("login rejected")
		} else {
			h.Logger.Error("login failed", zap.Error(err))
			msg = msgUnknownError
		}
		h.Views.Render(w, http.StatusOK, "login.html", loginView{Msg: msg})
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/todo/", http.StatusFound)
}

// Token issues a session token for form-encoded username and password,
// sets it as the session cookie and returns it as JSON.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, err := h.AuthService.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status, msg := http.StatusUnauthorized, msgUserNotFound
		if !errors.Is(err, models.ErrInvalidCredentials) {
			h.Logger.Error("token issuance failed", zap.Error(err))
			status, msg = http.StatusInternalServerError, "internal error"
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
		return
	}

	h.setSessionCookie(w, token)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Logout revokes the current token, clears the session cookie and renders
// the login page. It succeeds even without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.CookieName); err == nil {
		if err := h.AuthService.Logout(r.Context(), c.Value); err != nil {
			h.Logger.Error("token revocation failed", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.Views.Render(w, http.StatusOK, "login.html", loginView{Msg: msgLogoutSuccessful})
}

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, http.StatusOK, "register.html", registerView{})
}

// Register handles the submitted registration form. Rejected input
// re-renders the form with the non-secret fields preserved.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in := service.RegisterInput{
		Name:            r.PostFormValue("name"),
		Surname:         r.PostFormValue("surname"),
		Username:        r.PostFormValue("username"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("password2"),
	}

	err := h.AuthService.Register(r.Context(), in)
	if err == nil {
		http.Redirect(w, r, "/auth/", http.StatusFound)
		return
	}

	view := registerView{Name: in.Name, Surname: in.Surname, Username: in.Username}
	switch {
	case errors.Is(err, models.ErrUserExists):
		view.Msg = msgUsernameTaken
	case errors.Is(err, models.ErrPasswordMismatch):
		view.Msg = msgPasswordMismatch
	default:
		h.Logger.Error("registration failed", zap.Error(err))
		view.Msg = msgUnknownError
	}
	h.Views.Render(w, http.StatusOK, "register.html", view)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
