package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/dto"
	"github.com/prperemyshlev/account-linker/internal/repository"
)

func (s *Suite) postJSON(path string, body any) *http.Response {
	b, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := s.Client.Post(s.BaseURL+path, "application/json", bytes.NewReader(b))
	s.Require().NoError(err)
	return resp
}

func (s *Suite) getJSON(path string, v any) int {
	resp, err := s.Client.Get(s.BaseURL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()

	if v != nil && resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func (s *Suite) TestRegisterAndSignIn() {
	resp := s.postJSON("/api/auth/register", dto.RegisterRequest{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "secret1",
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var registered dto.RegisterResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&registered))
	s.Equal([]string{domain.ProviderCredentials}, registered.User.AuthProviders)

	dup := s.postJSON("/api/auth/register", dto.RegisterRequest{
		Name:     "Alice",
		Email:    "A@X.COM",
		Password: "secret1",
	})
	dup.Body.Close()
	s.Equal(http.StatusConflict, dup.StatusCode)

	bad := s.postJSON("/api/auth/callback/credentials", dto.CredentialsRequest{Email: "a@x.com", Password: "nope"})
	bad.Body.Close()
	s.Equal(http.StatusUnauthorized, bad.StatusCode)

	ok := s.postJSON("/api/auth/callback/credentials", dto.CredentialsRequest{Email: "a@x.com", Password: "secret1"})
	ok.Body.Close()
	s.Require().Equal(http.StatusOK, ok.StatusCode)

	var session domain.Session
	s.Require().Equal(http.StatusOK, s.getJSON("/api/auth/session", &session))
	s.Equal(registered.User.ID, session.User.ID)

	var me dto.MeResponse
	s.Require().Equal(http.StatusOK, s.getJSON("/api/auth/me", &me))
	s.Equal("a@x.com", me.User.Email)

	out, err := s.Client.Post(s.BaseURL+"/api/auth/signout", "application/json", nil)
	s.Require().NoError(err)
	out.Body.Close()

	s.Equal(http.StatusUnauthorized, s.getJSON("/api/auth/me", nil))
}

func (s *Suite) TestLinkProvider_ConcurrentSignIns() {
	ctx := context.Background()
	repos := repository.NewRepositories(s.Postgres)

	user := &domain.User{
		Email:         "race@example.com",
		Name:          "Race",
		AuthProviders: []string{domain.ProviderGoogle},
	}
	s.Require().NoError(repos.User.Create(ctx, user))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repos.User.LinkProvider(ctx, user.ID, domain.ProviderGitHub, "https://img.example/github.png")
			s.NoError(err)
		}()
	}
	wg.Wait()

	stored, err := repos.User.GetByEmail(ctx, "RACE@example.com")
	s.Require().NoError(err)
	s.Equal([]string{domain.ProviderGoogle, domain.ProviderGitHub}, stored.AuthProviders)
	s.Equal("https://img.example/github.png", stored.ProviderImage(domain.ProviderGitHub))
}

func (s *Suite) TestCreateUser_DuplicateEmailIgnoresCase() {
	ctx := context.Background()
	repos := repository.NewRepositories(s.Postgres)

	s.Require().NoError(repos.User.Create(ctx, &domain.User{Email: "dup@example.com", Name: "One"}))

	err := repos.User.Create(ctx, &domain.User{Email: "DUP@example.com", Name: "Two"})
	s.ErrorIs(err, repository.ErrDuplicateEmail)
}
