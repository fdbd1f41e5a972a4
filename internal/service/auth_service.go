package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/dto"
	"github.com/prperemyshlev/account-linker/internal/repository"
	"github.com/prperemyshlev/account-linker/internal/utils"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	metrics    *AuthMetrics
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	bcryptCost int,
	metrics *AuthMetrics,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		metrics:    metrics,
		logger:     logger,
	}
}

// Register registers a new credentials user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	email := utils.SanitizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrValidation)
	}

	if !utils.ValidatePassword(req.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, utils.MinPasswordLength)
	}

	if utils.PasswordTooLong(req.Password) {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, utils.MaxPasswordBytes)
	}

	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	// Any provider counts: one account per email
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("email %s: %w", email, ErrEmailTaken)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:         email,
		Name:          name,
		PasswordHash:  &passwordHash,
		AuthProviders: []string{domain.ProviderCredentials},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("email %s: %w", email, ErrEmailTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordRegistration(ctx)
	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return user, nil
}

// VerifyCredentials checks an email/password pair against stored credentials users
func (s *authService) VerifyCredentials(ctx context.Context, email, password string) (*domain.Profile, error) {
	email = utils.SanitizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrNoMatch
	}

	user, err := s.userRepo.GetByEmailWithProvider(ctx, email, domain.ProviderCredentials)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrNoMatch
	}

	match, err := utils.ComparePassword(*user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("stored password hash is unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, ErrNoMatch
	}
	if !match {
		return nil, ErrNoMatch
	}

	return user.Profile(), nil
}

// GetUser returns a stored user by ID
func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
