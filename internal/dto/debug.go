package dto

import "time"

// AuthConfigResponse is the read-only diagnostics payload of the debug endpoint
type AuthConfigResponse struct {
	Timestamp  time.Time      `json:"timestamp"`
	AuthConfig AuthConfigInfo `json:"authConfig"`
	Headers    RequestHeaders `json:"headers"`
}

// AuthConfigInfo holds masked provider configuration
type AuthConfigInfo struct {
	Environment      string            `json:"environment"`
	AuthURL          string            `json:"authUrl"`
	HasAuthSecret    bool              `json:"hasAuthSecret"`
	GoogleConfigured bool              `json:"googleConfigured"`
	GitHubConfigured bool              `json:"githubConfigured"`
	CallbackURLs     map[string]string `json:"callbackUrls"`
	GoogleClientID   *string           `json:"googleClientId"`
	GitHubClientID   *string           `json:"githubClientId"`
}

// RequestHeaders echoes a couple of request headers
type RequestHeaders struct {
	Host    string `json:"host"`
	Referer string `json:"referer"`
}
