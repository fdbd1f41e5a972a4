package memrepo

import (
	"context"
	"sync"
	"testing"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CaseInsensitiveEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "Alice@Example.com", AuthProviders: []string{"google"}}))

	err := repo.Create(ctx, &domain.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	u, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"google"}, u.AuthProviders)

	_, err = repo.GetByEmailWithProvider(ctx, "alice@example.com", domain.ProviderCredentials)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_LinkProviderIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &domain.User{Email: "bob@example.com", AuthProviders: []string{"google"}, ProviderImages: map[string]string{"google": "g.png"}}
	require.NoError(t, repo.Create(ctx, user))

	_, err := repo.LinkProvider(ctx, user.ID, "github", "gh.png")
	require.NoError(t, err)
	u, err := repo.LinkProvider(ctx, user.ID, "github", "other.png")
	require.NoError(t, err)

	assert.Equal(t, []string{"google", "github"}, u.AuthProviders)
	assert.Equal(t, "gh.png", u.ProviderImage("github"))
	assert.Equal(t, "g.png", u.ProviderImage("google"))
}

func TestUserRepository_ConcurrentLinksKeepAllProviders(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &domain.User{Email: "carol@example.com"}
	require.NoError(t, repo.Create(ctx, user))

	providers := []string{"google", "github", "credentials"}
	var wg sync.WaitGroup
	for _, p := range providers {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, _ = repo.LinkProvider(ctx, user.ID, p, p+".png")
		}(p)
	}
	wg.Wait()

	u, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, providers, u.AuthProviders)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &domain.User{Email: "dan@example.com", AuthProviders: []string{"google"}}
	require.NoError(t, repo.Create(ctx, user))

	u, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	u.AuthProviders[0] = "mutated"

	again, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"google"}, again.AuthProviders)
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	require.NoError(t, repo.Create(ctx, &domain.Account{UserID: "u1", Provider: "google", ProviderAccountID: "1"}))
	err := repo.Create(ctx, &domain.Account{UserID: "u2", Provider: "google", ProviderAccountID: "1"})
	assert.ErrorIs(t, err, repository.ErrDuplicateAccount)

	a, err := repo.GetByProvider(ctx, "google", "1")
	require.NoError(t, err)
	assert.Equal(t, "u1", a.UserID)

	accounts, err := repo.GetByUserID(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}
