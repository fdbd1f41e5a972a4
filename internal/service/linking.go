package service

import (
	"context"
	"errors"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/repository"
	"github.com/prperemyshlev/account-linker/internal/utils"
	"go.uber.org/zap"
)

// LinkOutcome describes what linking did to the stored user
type LinkOutcome string

const (
	LinkOutcomeLinked   LinkOutcome = "linked"
	LinkOutcomeNoop     LinkOutcome = "noop"
	LinkOutcomeNotFound LinkOutcome = "not_found"
	LinkOutcomeFailed   LinkOutcome = "failed"
)

// LinkResult is the best-effort result of linking a provider to a user.
// It never decides whether a sign-in succeeds.
type LinkResult struct {
	Outcome LinkOutcome
	// User is the stored user after linking, or as read when the write failed.
	// Nil for not_found and for failed lookups.
	User *domain.User
	Err  error
}

// LinkingPolicy attaches providers to the existing user with the same email
type LinkingPolicy struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewLinkingPolicy creates a new linking policy
func NewLinkingPolicy(users repository.UserRepository, logger *zap.Logger) *LinkingPolicy {
	return &LinkingPolicy{users: users, logger: logger}
}

// Link looks up the user by email and records the provider and its avatar on it.
// Failures are logged and reported in the result.
func (p *LinkingPolicy) Link(ctx context.Context, profile domain.ProviderProfile) LinkResult {
	log := p.logger.With(zap.String("provider", profile.Provider))

	user, err := p.users.GetByEmail(ctx, utils.SanitizeEmail(profile.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LinkResult{Outcome: LinkOutcomeNotFound}
		}
		log.Warn("account linking lookup failed", zap.Error(err))
		return LinkResult{Outcome: LinkOutcomeFailed, Err: err}
	}

	addProvider := !user.HasProvider(profile.Provider)
	addImage := profile.Image != "" && user.ProviderImage(profile.Provider) == ""
	if !addProvider && !addImage {
		return LinkResult{Outcome: LinkOutcomeNoop, User: user}
	}

	linked, err := p.users.LinkProvider(ctx, user.ID, profile.Provider, profile.Image)
	if err != nil {
		log.Warn("account linking failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return LinkResult{Outcome: LinkOutcomeFailed, User: user, Err: err}
	}

	log.Info("provider linked",
		zap.String("user_id", user.ID),
		zap.Bool("provider_added", addProvider),
		zap.Bool("image_added", addImage),
	)

	return LinkResult{Outcome: LinkOutcomeLinked, User: linked}
}
