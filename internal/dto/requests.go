package dto

import (
	"time"

	"github.com/prperemyshlev/account-linker/internal/domain"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CredentialsRequest represents a credentials sign-in, sent as JSON or as a form post
type CredentialsRequest struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl"`
}

// RegisterResponse represents a successful registration
type RegisterResponse struct {
	User    RegisteredUser `json:"user"`
	Message string         `json:"message"`
}

// RegisteredUser is the created user as returned to the client
type RegisteredUser struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"createdAt"`
	AuthProviders []string  `json:"authProviders"`
}

// SignInResponse represents a successful credentials sign-in
type SignInResponse struct {
	User domain.SessionUser `json:"user"`
	URL  string             `json:"url"`
}

// ProviderInfo describes a configured sign-in provider
type ProviderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SigninURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// MeResponse represents the current user's stored profile and linked accounts
type MeResponse struct {
	User     *domain.Profile   `json:"user"`
	Images   map[string]string `json:"providerImages,omitempty"`
	Accounts []*domain.Account `json:"accounts"`
}

// URLResponse carries a redirect target for API clients
type URLResponse struct {
	URL string `json:"url"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
