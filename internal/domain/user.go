package domain

import (
	"slices"
	"time"
)

// User represents a user in the system
type User struct {
	ID              string            `json:"id" db:"id"`
	Email           string            `json:"email" db:"email"`
	Name            string            `json:"name" db:"name"`
	PasswordHash    *string           `json:"-" db:"password_hash"`
	Image           string            `json:"image,omitempty" db:"image"`
	ProviderImages  map[string]string `json:"providerImages,omitempty" db:"provider_images"`
	AuthProviders   []string          `json:"authProviders" db:"auth_providers"`
	EmailVerifiedAt *time.Time        `json:"emailVerified,omitempty" db:"email_verified_at"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`
}

// HasProvider reports whether the provider is already linked to the user
func (u *User) HasProvider(provider string) bool {
	return slices.Contains(u.AuthProviders, provider)
}

// ProviderImage returns the avatar stored for a specific provider, or ""
func (u *User) ProviderImage(provider string) string {
	if u.ProviderImages == nil {
		return ""
	}
	return u.ProviderImages[provider]
}

// HasPassword reports whether the user can sign in with credentials
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Profile returns the public view of the user. It never carries the password hash.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Image:         u.Image,
		AuthProviders: slices.Clone(u.AuthProviders),
		CreatedAt:     u.CreatedAt,
	}
}

// Profile is the minimal public user representation
type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Image         string    `json:"image,omitempty"`
	AuthProviders []string  `json:"authProviders"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Account is an external provider account linked to a user
type Account struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"userId" db:"user_id"`
	Provider          string    `json:"provider" db:"provider"` // google, github
	ProviderAccountID string    `json:"providerAccountId" db:"provider_account_id"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}
