package repository

import (
	"context"

	"github.com/prperemyshlev/account-linker/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByEmailWithProvider returns the user only if provider is in its provider list
	GetByEmailWithProvider(ctx context.Context, email, provider string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// LinkProvider appends provider if absent and stores image under the provider
	// key if no image is stored there yet, in one atomic statement.
	LinkProvider(ctx context.Context, userID, provider, image string) (*domain.User, error)
}

// AccountRepository defines methods for linked provider accounts
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error)
}
