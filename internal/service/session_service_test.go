package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/repository/memrepo"
	"github.com/prperemyshlev/account-linker/internal/utils"
	"github.com/prperemyshlev/account-linker/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func newTestRedis(t *testing.T) (*database.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	r, err := database.NewRedis(context.Background(), &redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return r, mr
}

func TestNewClaims_ProviderImageWins(t *testing.T) {
	now := time.Now()
	user := &domain.User{
		ID:             "user-1",
		Email:          "a@x.com",
		Name:           "Alice",
		Image:          "https://img/generic.png",
		ProviderImages: map[string]string{"github": "https://img/github.png"},
	}

	claims := NewClaims(user, SignIn{Provider: "github", ProviderName: "alice-gh"}, now, time.Hour)
	session := SessionFromClaims(claims)

	assert.Equal(t, "user-1", session.User.ID)
	assert.Equal(t, "github", session.User.Provider)
	assert.Equal(t, "alice-gh", session.User.ProviderName)
	assert.Equal(t, "https://img/github.png", session.User.Image)
	assert.WithinDuration(t, now.Add(time.Hour), session.Expires, time.Second)
}

func TestNewClaims_Fallbacks(t *testing.T) {
	now := time.Now()
	user := &domain.User{ID: "user-1", Name: "Alice", Image: "https://img/generic.png"}

	claims := NewClaims(user, SignIn{Provider: "credentials"}, now, time.Hour)
	assert.Equal(t, "Alice", claims.ProviderName)
	assert.Equal(t, "https://img/generic.png", SessionFromClaims(claims).User.Image)

	claims = NewClaims(user, SignIn{Provider: "google", ProviderImage: "https://img/fresh.png"}, now, time.Hour)
	assert.Equal(t, "https://img/fresh.png", SessionFromClaims(claims).User.Image)

	bare := &domain.User{ID: "user-2"}
	assert.Empty(t, SessionFromClaims(NewClaims(bare, SignIn{Provider: "google"}, now, time.Hour)).User.Image)
}

func TestSessionFromClaims_ProviderImageOverridesGeneric(t *testing.T) {
	claims := &domain.SessionClaims{
		Provider:         "github",
		ProviderImage:    "X",
		Image:            "generic",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}

	assert.Equal(t, "X", SessionFromClaims(claims).User.Image)
}

func TestRefreshClaims(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	claims := &domain.SessionClaims{
		Provider:      "github",
		ProviderName:  "alice-gh",
		ProviderImage: "https://img/old.png",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(24 * time.Hour)),
		},
	}

	user := &domain.User{
		ID:             "user-1",
		Name:           "Alice",
		ProviderImages: map[string]string{"github": "https://img/new.png"},
	}

	refreshed := RefreshClaims(claims, user, time.Now())
	assert.Equal(t, "https://img/new.png", refreshed.ProviderImage)
	assert.Equal(t, "alice-gh", refreshed.ProviderName)
	assert.Equal(t, "jti-1", refreshed.ID)
	assert.Equal(t, claims.Expiry(), refreshed.Expiry())
	assert.Equal(t, "https://img/old.png", claims.ProviderImage)

	kept := RefreshClaims(claims, nil, time.Now())
	assert.Equal(t, "https://img/old.png", kept.ProviderImage)
}

func TestSessionService_IssueRefreshRevoke(t *testing.T) {
	ctx := context.Background()
	rdb, _ := newTestRedis(t)
	users := memrepo.NewUserRepository()

	user := &domain.User{Email: "a@x.com", Name: "Alice", AuthProviders: []string{"github"}}
	require.NoError(t, users.Create(ctx, user))

	svc := NewSessionService(utils.NewJWTManager(testSecret), users, NewRedisTokenRevoker(rdb), 30*24*time.Hour, zap.NewNop())
	impl := svc.(*sessionService)
	start := time.Now()
	impl.now = func() time.Time { return start }

	token, session, err := svc.Issue(ctx, user, SignIn{Provider: "github", ProviderName: "alice-gh"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.Empty(t, session.User.Image)

	_, err = users.LinkProvider(ctx, user.ID, "github", "https://img/github.png")
	require.NoError(t, err)

	impl.now = func() time.Time { return start.Add(time.Hour) }
	refreshedToken, refreshed, err := svc.Refresh(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "https://img/github.png", refreshed.User.Image)
	assert.Equal(t, session.Expires.Unix(), refreshed.Expires.Unix())

	claims, err := svc.Validate(ctx, refreshedToken)
	require.NoError(t, err)
	assert.Equal(t, session.Expires.Unix(), claims.Expiry().Unix())

	require.NoError(t, svc.Revoke(ctx, refreshedToken))

	_, err = svc.Validate(ctx, refreshedToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Refreshed tokens share the jti, so the first token is signed out too
	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionService_RefreshKeepsClaimsWhenUserMissing(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(utils.NewJWTManager(testSecret), memrepo.NewUserRepository(), nil, time.Hour, zap.NewNop())

	ghost := &domain.User{ID: "ghost", Name: "Ghost", Image: "https://img/ghost.png"}
	token, _, err := svc.Issue(ctx, ghost, SignIn{Provider: "google"})
	require.NoError(t, err)

	_, session, err := svc.Refresh(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "https://img/ghost.png", session.User.Image)
	assert.Equal(t, "Ghost", session.User.Name)
}

func TestSessionService_InvalidTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(utils.NewJWTManager(testSecret), memrepo.NewUserRepository(), nil, time.Hour, zap.NewNop())

	_, err := svc.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.Validate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, _, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.NoError(t, svc.Revoke(ctx, "garbage"))
}

func TestRedisTokenRevoker_Expires(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedis(t)
	revoker := NewRedisTokenRevoker(rdb)

	require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)

	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	ctx := context.Background()
	rdb, _ := newTestRedis(t)
	limiter := NewRateLimiter(rdb)

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "ip:127.0.0.1", 3, time.Minute)
		require.NoError(t, err)
	}

	remaining, err := limiter.Remaining(ctx, "ip:127.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	retryAfter, err := limiter.Allow(ctx, "ip:127.0.0.1", 3, time.Minute)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Greater(t, retryAfter, time.Duration(0))

	_, err = limiter.Allow(ctx, "ip:10.0.0.1", 3, time.Minute)
	assert.NoError(t, err)
}
