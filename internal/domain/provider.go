package domain

// Provider identifiers
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
	ProviderGitHub      = "github"
)

// ProviderProfile is the normalized identity returned by an OAuth provider.
// It carries facts only; linking decisions are made by the service layer.
type ProviderProfile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	NickName          string
	Image             string
}
