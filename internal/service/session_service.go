package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/repository"
	"github.com/prperemyshlev/account-linker/internal/utils"
	"go.uber.org/zap"
)

// sessionService implements SessionService interface
type sessionService struct {
	jwtManager *utils.JWTManager
	users      repository.UserRepository
	revoker    TokenRevoker
	maxAge     time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewSessionService creates a new session service. A nil revoker disables sign-out revocation.
func NewSessionService(
	jwtManager *utils.JWTManager,
	users repository.UserRepository,
	revoker TokenRevoker,
	maxAge time.Duration,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		jwtManager: jwtManager,
		users:      users,
		revoker:    revoker,
		maxAge:     maxAge,
		now:        time.Now,
		logger:     logger,
	}
}

// Issue mints a session token for a user who has just signed in
func (s *sessionService) Issue(ctx context.Context, user *domain.User, signIn SignIn) (string, *domain.Session, error) {
	claims := NewClaims(user, signIn, s.now(), s.maxAge)
	return s.sign(claims)
}

// Refresh re-issues a valid token with current avatar data, keeping its expiry
func (s *sessionService) Refresh(ctx context.Context, token string) (string, *domain.Session, error) {
	claims, err := s.Validate(ctx, token)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		s.logger.Warn("session refresh could not load user",
			zap.String("user_id", claims.UserID()),
			zap.Error(err),
		)
		user = nil
	}

	return s.sign(RefreshClaims(claims, user, s.now()))
}

// Validate parses the token and rejects revoked sessions
func (s *sessionService) Validate(ctx context.Context, token string) (*domain.SessionClaims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims, err := s.jwtManager.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check session revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: session signed out", ErrInvalidSession)
		}
	}

	return claims, nil
}

// Revoke signs a session out until its expiry. Invalid tokens are ignored.
func (s *sessionService) Revoke(ctx context.Context, token string) error {
	if s.revoker == nil || token == "" {
		return nil
	}

	claims, err := s.jwtManager.Parse(token)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidToken) {
			return nil
		}
		return err
	}

	ttl := claims.Expiry().Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

func (s *sessionService) sign(claims *domain.SessionClaims) (string, *domain.Session, error) {
	token, err := s.jwtManager.Sign(claims)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, SessionFromClaims(claims), nil
}
