// Package providertest provides an in-process goth.Provider for exercising
// OAuth flows without reaching a real identity provider.
package providertest

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/markbates/goth"
	"golang.org/x/oauth2"
)

// AuthURL is the consent page every Provider redirects to
const AuthURL = "https://provider.example/authorize"

// Session is the provider session carried through the flow cookie
type Session struct {
	AuthURL string `json:"auth_url"`
	Code    string `json:"code"`
}

func (s *Session) GetAuthURL() (string, error) {
	return s.AuthURL, nil
}

func (s *Session) Marshal() string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Authorize accepts any non-empty authorization code
func (s *Session) Authorize(_ goth.Provider, params goth.Params) (string, error) {
	s.Code = params.Get("code")
	if s.Code == "" {
		return "", errors.New("missing code")
	}
	return "access-token", nil
}

// Provider returns User from FetchUser once a code has been exchanged
type Provider struct {
	name string
	User goth.User
}

var _ goth.Provider = (*Provider)(nil)

// New creates a provider registered under name
func New(name string, user goth.User) *Provider {
	return &Provider{name: name, User: user}
}

func (p *Provider) Name() string        { return p.name }
func (p *Provider) SetName(name string) { p.name = name }
func (p *Provider) Debug(bool)          {}

func (p *Provider) BeginAuth(state string) (goth.Session, error) {
	return &Session{AuthURL: AuthURL + "?state=" + url.QueryEscape(state)}, nil
}

func (p *Provider) UnmarshalSession(data string) (goth.Session, error) {
	s := &Session{}
	err := json.Unmarshal([]byte(data), s)
	return s, err
}

func (p *Provider) FetchUser(s goth.Session) (goth.User, error) {
	sess, ok := s.(*Session)
	if !ok || sess.Code == "" {
		return goth.User{}, errors.New("not authorized")
	}
	u := p.User
	u.Provider = p.name
	return u, nil
}

func (p *Provider) RefreshToken(string) (*oauth2.Token, error) {
	return nil, errors.New("refresh not supported")
}

func (p *Provider) RefreshTokenAvailable() bool { return false }
