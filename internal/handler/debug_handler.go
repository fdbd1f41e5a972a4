package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-linker/internal/config"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/dto"
	"github.com/prperemyshlev/account-linker/internal/utils"
)

// DebugHandler exposes read-only configuration diagnostics
type DebugHandler struct {
	cfg *config.Config
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(cfg *config.Config) *DebugHandler {
	return &DebugHandler{cfg: cfg}
}

// AuthConfig reports which providers are configured, with client ids masked
func (h *DebugHandler) AuthConfig(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AuthConfigResponse{
		Timestamp: time.Now().UTC(),
		AuthConfig: dto.AuthConfigInfo{
			Environment:      h.cfg.Env,
			AuthURL:          h.cfg.Auth.URL,
			HasAuthSecret:    h.cfg.Auth.Secret != "",
			GoogleConfigured: h.cfg.Google.Configured(),
			GitHubConfigured: h.cfg.GitHub.Configured(),
			CallbackURLs: map[string]string{
				domain.ProviderGoogle: h.cfg.Auth.CallbackURL(domain.ProviderGoogle),
				domain.ProviderGitHub: h.cfg.Auth.CallbackURL(domain.ProviderGitHub),
			},
			GoogleClientID: maskedOrNil(h.cfg.Google.ID),
			GitHubClientID: maskedOrNil(h.cfg.GitHub.ID),
		},
		Headers: dto.RequestHeaders{
			Host:    c.Request.Host,
			Referer: c.Request.Referer(),
		},
	})
}

func maskedOrNil(value string) *string {
	if value == "" {
		return nil
	}
	masked := utils.MaskSecret(value)
	return &masked
}
