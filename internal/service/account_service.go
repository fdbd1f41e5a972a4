package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/repository"
	"github.com/prperemyshlev/account-linker/internal/utils"
	"go.uber.org/zap"
)

// SignInResult is the outcome of an OAuth sign-in.
// Link is informational; the sign-in succeeded whenever User is set.
type SignInResult struct {
	User    *domain.User
	Link    LinkResult
	Created bool
}

// accountService implements AccountService interface
type accountService struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	policy   *LinkingPolicy
	metrics  *AuthMetrics
	logger   *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	metrics *AuthMetrics,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		users:    users,
		accounts: accounts,
		policy:   NewLinkingPolicy(users, logger),
		metrics:  metrics,
		logger:   logger,
	}
}

// SignInOAuth links the provider to the user with the profile's email, creating the user if none exists
func (s *accountService) SignInOAuth(ctx context.Context, profile domain.ProviderProfile) (*SignInResult, error) {
	profile.Email = utils.SanitizeEmail(profile.Email)
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: %s did not return an email address", ErrValidation, profile.Provider)
	}

	result := &SignInResult{Link: s.policy.Link(ctx, profile)}
	s.metrics.RecordLink(ctx, profile.Provider, result.Link.Outcome)

	switch {
	case result.Link.User != nil:
		result.User = result.Link.User
	default:
		user, err := s.createUser(ctx, profile)
		if err != nil {
			// Another sign-in created the same email first
			if errors.Is(err, repository.ErrDuplicateEmail) {
				result.Link = s.policy.Link(ctx, profile)
				s.metrics.RecordLink(ctx, profile.Provider, result.Link.Outcome)
				if result.Link.User != nil {
					result.User = result.Link.User
					break
				}
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		result.User = user
		result.Created = true
	}

	s.ensureAccount(ctx, result.User.ID, profile)

	return result, nil
}

func (s *accountService) createUser(ctx context.Context, profile domain.ProviderProfile) (*domain.User, error) {
	user := &domain.User{
		Email:          profile.Email,
		Name:           displayName(profile),
		Image:          profile.Image,
		AuthProviders:  []string{profile.Provider},
		ProviderImages: map[string]string{},
	}
	if profile.Image != "" {
		user.ProviderImages[profile.Provider] = profile.Image
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created from provider",
		zap.String("user_id", user.ID),
		zap.String("provider", profile.Provider),
	)

	return user, nil
}

// ensureAccount records the external account. Failures never block the sign-in.
// An account already held by another user is left there and logged.
func (s *accountService) ensureAccount(ctx context.Context, userID string, profile domain.ProviderProfile) {
	if profile.ProviderAccountID == "" {
		return
	}

	log := s.logger.With(
		zap.String("user_id", userID),
		zap.String("provider", profile.Provider),
	)

	existing, err := s.accounts.GetByProvider(ctx, profile.Provider, profile.ProviderAccountID)
	switch {
	case err == nil && existing.UserID == userID:
		return
	case err == nil:
		log.Warn("provider account is linked to another user",
			zap.String("owner_id", existing.UserID),
		)
		return
	case !errors.Is(err, repository.ErrNotFound):
		log.Warn("failed to look up provider account", zap.Error(err))
		return
	}

	err = s.accounts.Create(ctx, &domain.Account{
		UserID:            userID,
		Provider:          profile.Provider,
		ProviderAccountID: profile.ProviderAccountID,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicateAccount) {
		log.Warn("failed to record provider account", zap.Error(err))
	}
}

// Accounts lists the provider accounts linked to a user
func (s *accountService) Accounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// displayName picks the provider name, then the nickname, then the email local part
func displayName(profile domain.ProviderProfile) string {
	if name := strings.TrimSpace(profile.Name); name != "" {
		return name
	}
	if nick := strings.TrimSpace(profile.NickName); nick != "" {
		return nick
	}
	local, _, _ := strings.Cut(profile.Email, "@")
	return local
}
