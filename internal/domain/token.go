package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the claims carried by the session token
type SessionClaims struct {
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Image         string `json:"image,omitempty"`
	Provider      string `json:"provider"`
	ProviderName  string `json:"providerName,omitempty"`
	ProviderImage string `json:"providerImage,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token
func (c *SessionClaims) UserID() string {
	return c.Subject
}

// Expiry returns the absolute expiry of the session
func (c *SessionClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// SessionUser is the user view exposed to clients
type SessionUser struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Image        string `json:"image,omitempty"`
	Provider     string `json:"provider"`
	ProviderName string `json:"providerName,omitempty"`
}

// Session is the client-visible session object
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}
