package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/dto"
)

// AuthService defines methods for credential accounts
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	// VerifyCredentials returns ErrNoMatch for unknown users and wrong passwords alike
	VerifyCredentials(ctx context.Context, email, password string) (*domain.Profile, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// AccountService reconciles OAuth sign-ins with stored users
type AccountService interface {
	SignInOAuth(ctx context.Context, profile domain.ProviderProfile) (*SignInResult, error)
	Accounts(ctx context.Context, userID string) ([]*domain.Account, error)
}

// SessionService mints, refreshes and revokes session tokens
type SessionService interface {
	Issue(ctx context.Context, user *domain.User, signIn SignIn) (string, *domain.Session, error)
	Refresh(ctx context.Context, token string) (string, *domain.Session, error)
	Validate(ctx context.Context, token string) (*domain.SessionClaims, error)
	Revoke(ctx context.Context, token string) error
}

// TokenRevoker keeps the ids of signed-out tokens until they expire
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
