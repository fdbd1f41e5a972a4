package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/dto"
	"github.com/prperemyshlev/account-linker/internal/repository/memrepo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceSuite struct {
	suite.Suite
	ctx   context.Context
	users *memrepo.UserRepository
	svc   AuthService
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = memrepo.NewUserRepository()
	s.svc = NewAuthService(s.users, bcrypt.MinCost, nil, zap.NewNop())
}

func (s *AuthServiceSuite) register(name, email, password string) (*domain.User, error) {
	return s.svc.Register(s.ctx, &dto.RegisterRequest{Name: name, Email: email, Password: password})
}

func (s *AuthServiceSuite) TestRegisterAndSignInScenario() {
	user, err := s.register("A", "a@x.com", "secret1")
	s.Require().NoError(err)
	s.Equal([]string{domain.ProviderCredentials}, user.AuthProviders)
	s.Require().NotNil(user.PasswordHash)
	s.NotEqual("secret1", *user.PasswordHash)

	_, err = s.register("A", "a@x.com", "secret1")
	s.ErrorIs(err, ErrEmailTaken)

	_, err = s.svc.VerifyCredentials(s.ctx, "a@x.com", "wrong")
	s.ErrorIs(err, ErrNoMatch)

	profile, err := s.svc.VerifyCredentials(s.ctx, "a@x.com", "secret1")
	s.Require().NoError(err)
	s.Equal(user.ID, profile.ID)
	s.Equal([]string{domain.ProviderCredentials}, profile.AuthProviders)
}

func (s *AuthServiceSuite) TestRegisterValidation() {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"missing name", "", "a@x.com", "secret1"},
		{"missing email", "A", "", "secret1"},
		{"missing password", "A", "a@x.com", ""},
		{"short password", "A", "a@x.com", "12345"},
		{"malformed email", "A", "not-an-email", "secret1"},
		{"password over bcrypt limit", "A", "a@x.com", strings.Repeat("a", 73)},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.register(tt.userName, tt.email, tt.password)
			s.ErrorIs(err, ErrValidation)
		})
	}
}

func (s *AuthServiceSuite) TestRegisterConflictsWithOAuthUser() {
	err := s.users.Create(s.ctx, &domain.User{Email: "g@x.com", AuthProviders: []string{domain.ProviderGoogle}})
	s.Require().NoError(err)

	_, err = s.register("G", "G@X.com", "secret1")
	s.ErrorIs(err, ErrEmailTaken)
}

func (s *AuthServiceSuite) TestVerifyCredentialsIgnoresOAuthOnlyUser() {
	err := s.users.Create(s.ctx, &domain.User{Email: "g@x.com", AuthProviders: []string{domain.ProviderGoogle}})
	s.Require().NoError(err)

	_, err = s.svc.VerifyCredentials(s.ctx, "g@x.com", "anything")
	s.ErrorIs(err, ErrNoMatch)
}

func (s *AuthServiceSuite) TestVerifyCredentialsEmptyInput() {
	_, err := s.svc.VerifyCredentials(s.ctx, "", "")
	s.ErrorIs(err, ErrNoMatch)
}

func (s *AuthServiceSuite) TestVerifyCredentialsNormalizesEmail() {
	_, err := s.register("A", "a@x.com", "secret1")
	s.Require().NoError(err)

	_, err = s.svc.VerifyCredentials(s.ctx, "  A@X.COM ", "secret1")
	s.NoError(err)
}

func TestProfileNeverContainsPassword(t *testing.T) {
	svc := NewAuthService(memrepo.NewUserRepository(), bcrypt.MinCost, nil, zap.NewNop())

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	for _, v := range []any{user, user.Profile()} {
		body, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "secret1")
		assert.NotContains(t, string(body), *user.PasswordHash)
	}
}
