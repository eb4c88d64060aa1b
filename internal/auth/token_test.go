package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophTodo/internal/models"
)

var secret = []byte("test-secret")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenService_IssueVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewTokenService(secret, WithClock(clock.Now))

	raw, err := svc.Issue("alice", 7, 30*time.Minute)
	require.NoError(t, err)

	tok, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: 7, Username: "alice"}, tok.Identity)
	assert.NotEmpty(t, tok.ID)
	assert.True(t, tok.ExpiresAt.Equal(clock.t.Add(30*time.Minute)))

	clock.t = clock.t.Add(29 * time.Minute)
	_, err = svc.Verify(raw)
	assert.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenService_UniqueIDs(t *testing.T) {
	svc := NewTokenService(secret)

	a, err := svc.Issue("alice", 1, time.Minute)
	require.NoError(t, err)
	b, err := svc.Issue("alice", 1, time.Minute)
	require.NoError(t, err)

	ta, err := svc.Verify(a)
	require.NoError(t, err)
	tb, err := svc.Verify(b)
	require.NoError(t, err)
	assert.NotEqual(t, ta.ID, tb.ID)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(secret)
	good, err := svc.Issue("alice", 1, time.Minute)
	require.NoError(t, err)

	otherKey, err := NewTokenService([]byte("other")).Issue("alice", 1, time.Minute)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		UserID:           1,
	}).SignedString(secret)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		UserID:           1,
	}).SignedString(secret)
	require.NoError(t, err)

	noUserID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(secret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: 1,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":       "",
		"garbage":     "not.a.token",
		"tampered":    good[:strings.LastIndex(good, ".")+1] + "AAAA",
		"foreign key": otherKey,
		"no expiry":   noExpiry,
		"no subject":  noSubject,
		"no user id":  noUserID,
		"alg none":    unsigned,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			tok, err := svc.Verify(raw)
			assert.Nil(t, tok)
			assert.ErrorIs(t, err, models.ErrInvalidToken)
		})
	}
}
