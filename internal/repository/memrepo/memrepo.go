// Package memrepo provides in-memory repositories with the same semantics as the
// PostgreSQL ones. It backs unit tests and local runs without a database.
package memrepo

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/repository"
)

// UserRepository is a concurrency-safe in-memory repository.UserRepository
type UserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.AuthProviders = slices.Clone(u.AuthProviders)
	c.ProviderImages = maps.Clone(u.ProviderImages)
	if u.PasswordHash != nil {
		hash := *u.PasswordHash
		c.PasswordHash = &hash
	}
	return &c
}

func (r *UserRepository) findByEmail(email string) *domain.User {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// Create stores a new user, rejecting a case-insensitive duplicate email
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByEmail(user.Email) != nil {
		return fmt.Errorf("user with email %s already exists: %w", user.Email, repository.ErrDuplicateEmail)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if user.AuthProviders == nil {
		user.AuthProviders = []string{}
	}
	if user.ProviderImages == nil {
		user.ProviderImages = map[string]string{}
	}

	r.users[user.ID] = cloneUser(user)
	return nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findByEmail(email)
	if u == nil {
		return nil, fmt.Errorf("user with email %s not found: %w", email, repository.ErrNotFound)
	}
	return cloneUser(u), nil
}

// GetByEmailWithProvider retrieves a user by email whose provider list includes provider
func (r *UserRepository) GetByEmailWithProvider(_ context.Context, email, provider string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findByEmail(email)
	if u == nil || !u.HasProvider(provider) {
		return nil, fmt.Errorf("user with email %s and provider %s not found: %w", email, provider, repository.ErrNotFound)
	}
	return cloneUser(u), nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s not found: %w", id, repository.ErrNotFound)
	}
	return cloneUser(u), nil
}

// LinkProvider appends provider if absent and stores image if none is stored for it yet
func (r *UserRepository) LinkProvider(_ context.Context, userID, provider, image string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with id %s not found: %w", userID, repository.ErrNotFound)
	}

	if !u.HasProvider(provider) {
		u.AuthProviders = append(u.AuthProviders, provider)
	}
	if image != "" && u.ProviderImage(provider) == "" {
		if u.ProviderImages == nil {
			u.ProviderImages = map[string]string{}
		}
		u.ProviderImages[provider] = image
	}
	u.UpdatedAt = time.Now()

	return cloneUser(u), nil
}

// AccountRepository is a concurrency-safe in-memory repository.AccountRepository
type AccountRepository struct {
	mu       sync.Mutex
	accounts []*domain.Account
}

// NewAccountRepository creates an empty in-memory account repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

// Create links a provider account, rejecting a duplicate (provider, provider account id)
func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Provider == account.Provider && a.ProviderAccountID == account.ProviderAccountID {
			return fmt.Errorf("%s account %s already linked: %w", account.Provider, account.ProviderAccountID, repository.ErrDuplicateAccount)
		}
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	c := *account
	r.accounts = append(r.accounts, &c)
	return nil
}

// GetByProvider retrieves a linked account by provider and provider account ID
func (r *AccountRepository) GetByProvider(_ context.Context, provider, providerAccountID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Provider == provider && a.ProviderAccountID == providerAccountID {
			c := *a
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%s account %s not found: %w", provider, providerAccountID, repository.ErrNotFound)
}

// GetByUserID retrieves all accounts linked to a user in creation order
func (r *AccountRepository) GetByUserID(_ context.Context, userID string) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := []*domain.Account{}
	for _, a := range r.accounts {
		if a.UserID == userID {
			c := *a
			accounts = append(accounts, &c)
		}
	}
	return accounts, nil
}

// New returns in-memory repositories bundled the same way as repository.NewRepositories
func New() *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(),
		Account: NewAccountRepository(),
	}
}
