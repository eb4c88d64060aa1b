// Package service provides the registration, login and session logic and
// the owner-scoped task operations, delegating persistence to repository
// interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GophTodo/internal/auth"
	"github.com/atinyakov/GophTodo/internal/models"
)

// TokenTTL is the fixed validity window of a session token. Tokens are not
// refreshed by use.
const TokenTTL = 30 * time.Minute

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// UserExists returns true if a user with the given username exists.
	UserExists(ctx context.Context, username string) (bool, error)
	// CreateUser stores a new user and returns its id.
	// Returns models.ErrUserExists if the username is taken.
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	// GetUserByUsername returns models.ErrNotFound for unknown usernames.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// RevocationStore remembers token ids revoked by logout until the token expires.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer issues and verifies signed session tokens.
type TokenIssuer interface {
	Issue(username string, userID int64, ttl time.Duration) (string, error)
	Verify(raw string) (*auth.Token, error)
}

// RegisterInput is the submitted registration form.
type RegisterInput struct {
	Name            string
	Surname         string
	Username        string
	Password        string
	ConfirmPassword string
}

// Service implements registration, login, logout and session resolution.
type Service struct {
	users   UserRepository
	revoked RevocationStore
	hasher  PasswordHasher
	tokens  TokenIssuer
}

// NewAuthService constructs a new Service from its collaborators.
func NewAuthService(users UserRepository, revoked RevocationStore, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{users: users, revoked: revoked, hasher: hasher, tokens: tokens}
}

// Register creates a new user. It fails with models.ErrUserExists when the
// username is taken and models.ErrPasswordMismatch when the two passwords
// differ. Nothing is stored on failure.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	exists, err := s.users.UserExists(ctx, in.Username)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrUserExists
	}
	if in.Password != in.ConfirmPassword {
		return models.ErrPasswordMismatch
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	_, err = s.users.CreateUser(ctx, &models.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Username:     in.Username,
		PasswordHash: digest,
	})
	return err
}

// Authenticate returns the user matching username and password.
// Unknown usernames and wrong passwords both yield models.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates the user and issues a session token valid for TokenTTL.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	token, err := s.tokens.Issue(u.Username, u.ID, TokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Resolve verifies raw and returns the identity it carries.
// Missing, malformed, expired and revoked tokens all yield
// models.ErrInvalidToken. Any other error comes from the revocation store.
func (s *Service) Resolve(ctx context.Context, raw string) (*models.Identity, error) {
	if raw == "" {
		return nil, models.ErrInvalidToken
	}
	tok, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, tok.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, models.ErrInvalidToken
	}

	id := tok.Identity
	return &id, nil
}

// Logout revokes raw until its natural expiry. An absent or invalid token
// has nothing to revoke and is not an error.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	tok, err := s.tokens.Verify(raw)
	if err != nil {
		return nil
	}
	return s.revoked.Revoke(ctx, tok.ID, tok.ExpiresAt)
}
