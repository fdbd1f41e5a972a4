package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prperemyshlev/account-linker/internal/domain"
)

// SignIn carries the facts of the current sign-in that are not stored on the user
type SignIn struct {
	Provider      string
	ProviderName  string
	ProviderImage string
}

// NewClaims builds the claims of a freshly signed-in session
func NewClaims(user *domain.User, signIn SignIn, now time.Time, maxAge time.Duration) *domain.SessionClaims {
	providerName := signIn.ProviderName
	if providerName == "" {
		providerName = user.Name
	}

	providerImage := user.ProviderImage(signIn.Provider)
	if providerImage == "" {
		providerImage = signIn.ProviderImage
	}

	return &domain.SessionClaims{
		Email:         user.Email,
		Name:          user.Name,
		Image:         user.Image,
		Provider:      signIn.Provider,
		ProviderName:  providerName,
		ProviderImage: providerImage,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
		},
	}
}

// RefreshClaims recomputes the avatar data of an existing session from the stored user.
// A nil user keeps the previous values. Subject, provider, jti and expiry never change.
func RefreshClaims(claims *domain.SessionClaims, user *domain.User, now time.Time) *domain.SessionClaims {
	refreshed := *claims
	refreshed.IssuedAt = jwt.NewNumericDate(now)

	if user == nil {
		return &refreshed
	}

	refreshed.Email = user.Email
	refreshed.Name = user.Name
	refreshed.Image = user.Image
	if img := user.ProviderImage(claims.Provider); img != "" {
		refreshed.ProviderImage = img
	}

	return &refreshed
}

// SessionImage resolves the avatar shown to clients
func SessionImage(providerImage, image string) string {
	if providerImage != "" {
		return providerImage
	}
	return image
}

// SessionFromClaims returns the client view of a session.
// The display name prefers the name the provider supplied for this sign-in.
func SessionFromClaims(claims *domain.SessionClaims) *domain.Session {
	name := claims.ProviderName
	if name == "" {
		name = claims.Name
	}

	return &domain.Session{
		User: domain.SessionUser{
			ID:           claims.UserID(),
			Name:         name,
			Email:        claims.Email,
			Image:        SessionImage(claims.ProviderImage, claims.Image),
			Provider:     claims.Provider,
			ProviderName: claims.ProviderName,
		},
		Expires: claims.Expiry(),
	}
}
