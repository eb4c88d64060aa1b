package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/atinyakov/GophTodo/internal/models"
)

// Claims is the signed payload of a session token.
// Subject carries the username and ID carries the token id used for revocation.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// Token is the decoded content of a verified session token.
type Token struct {
	models.Identity
	// ID is the unique token id.
	ID string
	// ExpiresAt is the instant the token stops being accepted.
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256-signed session tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret []byte, opts ...TokenOption) *TokenService {
	s := &TokenService{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a token for the user that expires ttl from now.
func (s *TokenService) Issue(username string, userID int64, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw. Every failure, whatever
// the cause, is reported as models.ErrInvalidToken.
func (s *TokenService) Verify(raw string) (*Token, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Join(models.ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.UserID == 0 || claims.ExpiresAt == nil {
		return nil, models.ErrInvalidToken
	}

	return &Token{
		Identity:  models.Identity{UserID: claims.UserID, Username: claims.Subject},
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
