// Package provider holds the identity providers enabled at startup and runs
// the OAuth redirect flow for them.
package provider

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/prperemyshlev/account-linker/internal/config"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"go.uber.org/zap"
)

const (
	TypeOAuth       = "oauth"
	TypeCredentials = "credentials"

	// flowMaxAge bounds how long a user may take on the consent screen
	flowMaxAge = 300
)

// Info describes an enabled provider
type Info struct {
	ID   string
	Name string
	Type string
}

var displayNames = map[string]string{
	domain.ProviderCredentials: "Credentials",
	domain.ProviderGoogle:      "Google",
	domain.ProviderGitHub:      "GitHub",
}

// Registry is the read-only set of enabled providers
type Registry struct {
	oauth  map[string]goth.Provider
	infos  []Info
	store  sessions.Store
	logger *zap.Logger
}

// NewRegistry builds the registry from configuration.
// Credentials is always enabled; OAuth providers only when both client id and secret are set.
func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	var providers []goth.Provider

	if cfg.Google.Configured() {
		providers = append(providers, google.New(
			cfg.Google.ID,
			cfg.Google.Secret,
			cfg.Auth.CallbackURL(domain.ProviderGoogle),
			"email", "profile",
		))
	}

	if cfg.GitHub.Configured() {
		providers = append(providers, github.New(
			cfg.GitHub.ID,
			cfg.GitHub.Secret,
			cfg.Auth.CallbackURL(domain.ProviderGitHub),
			"read:user", "user:email",
		))
	}

	secure := cfg.Auth.SecureCookies || strings.HasPrefix(cfg.Auth.URL, "https://")
	return NewRegistryWith(NewFlowStore(cfg.Auth.Secret, flowMaxAge, secure), logger, providers...)
}

// NewFlowStore keeps OAuth state in a signed cookie.
// maxAge bounds both the browser cookie and the signed timestamp checked on decode.
func NewFlowStore(secret string, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(maxAge)

	return store
}

// NewRegistryWith builds a registry from explicit OAuth providers and a flow state store
func NewRegistryWith(store sessions.Store, logger *zap.Logger, providers ...goth.Provider) *Registry {
	r := &Registry{
		oauth:  make(map[string]goth.Provider, len(providers)),
		infos:  []Info{{ID: domain.ProviderCredentials, Name: displayName(domain.ProviderCredentials), Type: TypeCredentials}},
		store:  store,
		logger: logger,
	}

	for _, p := range providers {
		r.oauth[p.Name()] = p
		r.infos = append(r.infos, Info{ID: p.Name(), Name: displayName(p.Name()), Type: TypeOAuth})
	}

	return r
}

func displayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return id
}

// Providers returns the enabled providers, credentials first
func (r *Registry) Providers() []Info {
	out := make([]Info, len(r.infos))
	copy(out, r.infos)
	return out
}

// Enabled reports whether a provider id is enabled
func (r *Registry) Enabled(id string) bool {
	if id == domain.ProviderCredentials {
		return true
	}
	_, ok := r.oauth[id]
	return ok
}

// OAuth returns the OAuth provider registered under id
func (r *Registry) OAuth(id string) (goth.Provider, bool) {
	p, ok := r.oauth[id]
	return p, ok
}
