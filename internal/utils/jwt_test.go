package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func newClaims(exp time.Time) *domain.SessionClaims {
	return &domain.SessionClaims{
		Email:    "alice@example.com",
		Name:     "Alice",
		Provider: domain.ProviderGoogle,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestJWTManager_SignAndParse(t *testing.T) {
	m := NewJWTManager(testSecret)

	claims := newClaims(time.Now().Add(time.Hour))
	token, err := m.Sign(claims)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.UserID())
	assert.Equal(t, "alice@example.com", parsed.Email)
	assert.Equal(t, domain.ProviderGoogle, parsed.Provider)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager(testSecret)

	token, err := m.Sign(newClaims(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager(testSecret).Sign(newClaims(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = NewJWTManager("another-secret-key-that-is-32-characters-long").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Garbage(t *testing.T) {
	_, err := NewJWTManager(testSecret).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_MissingSubject(t *testing.T) {
	m := NewJWTManager(testSecret)

	claims := newClaims(time.Now().Add(time.Hour))
	claims.Subject = ""
	token, err := m.Sign(claims)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
