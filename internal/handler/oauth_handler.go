package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/provider"
	"github.com/prperemyshlev/account-linker/internal/service"
	"go.uber.org/zap"
)

// SignIn starts the OAuth flow of a provider.
// The credentials provider has no redirect flow and is sent to the sign-in page.
func (h *AuthHandler) SignIn(c *gin.Context) {
	id := c.Param("provider")
	callbackURL := h.safeCallbackURL(c.Query("callbackUrl"))

	if !h.providers.Enabled(id) {
		h.redirectToError(c, ErrCodeOAuthSignin)
		return
	}

	if id == domain.ProviderCredentials {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	authURL, err := h.providers.Begin(c.Writer, c.Request, id, callbackURL)
	if err != nil {
		h.logger.Error("failed to start oauth flow", zap.String("provider", id), zap.Error(err))
		h.redirectToError(c, ErrCodeOAuthSignin)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// OAuthCallback completes an OAuth flow, links the provider and starts a session
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("provider")
	log := h.logger.With(zap.String("provider", id))

	// credentials posts to its own route; anything else here must be an enabled OAuth provider
	if id == domain.ProviderCredentials || !h.providers.Enabled(id) {
		h.redirectToError(c, ErrCodeOAuthCallback)
		return
	}

	done, err := h.providers.Complete(c.Writer, c.Request, id)
	if err != nil {
		h.metrics.RecordSignIn(ctx, id, signinResultFailure)
		if errors.Is(err, provider.ErrAccessDenied) {
			h.redirectToError(c, ErrCodeAccessDenied)
			return
		}
		log.Warn("oauth callback failed", zap.Error(err))
		h.redirectToError(c, ErrCodeOAuthCallback)
		return
	}

	result, err := h.accounts.SignInOAuth(ctx, done.Profile)
	if err != nil {
		h.metrics.RecordSignIn(ctx, id, signinResultError)
		if errors.Is(err, service.ErrValidation) {
			log.Warn("oauth profile rejected", zap.Error(err))
			h.redirectToError(c, ErrCodeOAuthCallback)
			return
		}
		log.Error("failed to create user for oauth sign-in", zap.Error(err))
		h.redirectToError(c, ErrCodeOAuthCreateAccount)
		return
	}

	providerName := done.Profile.Name
	if providerName == "" {
		providerName = done.Profile.NickName
	}

	token, session, err := h.sessions.Issue(ctx, result.User, service.SignIn{
		Provider:      id,
		ProviderName:  providerName,
		ProviderImage: done.Profile.Image,
	})
	if err != nil {
		h.metrics.RecordSignIn(ctx, id, signinResultError)
		log.Error("failed to issue session", zap.Error(err))
		h.redirectToError(c, ErrCodeOAuthCallback)
		return
	}

	h.metrics.RecordSignIn(ctx, id, signinResultSuccess)
	log.Info("oauth sign-in",
		zap.String("user_id", result.User.ID),
		zap.String("link_outcome", string(result.Link.Outcome)),
		zap.Bool("created", result.Created),
	)

	h.setSessionCookie(c, token, session.Expires)
	c.Redirect(http.StatusFound, h.safeCallbackURL(done.CallbackURL))
}

// SigninGoogle forwards the legacy Google redirect URI to the Google callback, query string intact
func (h *AuthHandler) SigninGoogle(c *gin.Context) {
	target := "/api/auth/callback/" + domain.ProviderGoogle
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}
	c.Redirect(http.StatusFound, target)
}
