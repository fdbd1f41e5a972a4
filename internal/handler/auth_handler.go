package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-linker/internal/config"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/dto"
	"github.com/prperemyshlev/account-linker/internal/provider"
	"github.com/prperemyshlev/account-linker/internal/repository"
	"github.com/prperemyshlev/account-linker/internal/service"
	"go.uber.org/zap"
)

const (
	signinResultSuccess = "success"
	signinResultFailure = "failure"
	signinResultError   = "error"
)

// AuthHandler handles registration, sign-in and session requests
type AuthHandler struct {
	cfg       *config.Config
	auth      service.AuthService
	accounts  service.AccountService
	sessions  service.SessionService
	providers *provider.Registry
	metrics   *service.AuthMetrics
	logger    *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	cfg *config.Config,
	auth service.AuthService,
	accounts service.AccountService,
	sessions service.SessionService,
	providers *provider.Registry,
	metrics *service.AuthMetrics,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		cfg:       cfg,
		auth:      auth,
		accounts:  accounts,
		sessions:  sessions,
		providers: providers,
		metrics:   metrics,
		logger:    logger,
	}
}

// Register handles user registration
// @Summary Register a new credentials user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Message: validationMessage(err),
			})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:   "Conflict",
				Message: "User with this email already exists",
			})
		default:
			h.internalError(c, "registration failed", err)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		User: dto.RegisteredUser{
			ID:            user.ID,
			Name:          user.Name,
			Email:         user.Email,
			CreatedAt:     user.CreatedAt,
			AuthProviders: user.AuthProviders,
		},
		Message: "Registration successful",
	})
}

// CredentialsSignIn handles email/password sign-in.
// JSON clients get a JSON answer; form posts are redirected.
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.CredentialsRequest true "Credentials"
// @Success 200 {object} dto.SignInResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/callback/credentials [post]
func (h *AuthHandler) CredentialsSignIn(c *gin.Context) {
	isJSON := c.ContentType() == gin.MIMEJSON

	var req dto.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.credentialsFailed(c, isJSON)
		return
	}

	profile, err := h.auth.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNoMatch) {
			h.metrics.RecordSignIn(c.Request.Context(), domain.ProviderCredentials, signinResultFailure)
			h.credentialsFailed(c, isJSON)
			return
		}
		h.metrics.RecordSignIn(c.Request.Context(), domain.ProviderCredentials, signinResultError)
		if isJSON {
			h.internalError(c, "credentials sign-in failed", err)
			return
		}
		h.logger.Error("credentials sign-in failed", zap.Error(err))
		h.redirectToError(c, ErrCodeConfiguration)
		return
	}

	user := &domain.User{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
		Image: profile.Image,
	}

	token, session, err := h.sessions.Issue(c.Request.Context(), user, service.SignIn{
		Provider:     domain.ProviderCredentials,
		ProviderName: profile.Name,
	})
	if err != nil {
		h.internalError(c, "failed to issue session", err)
		return
	}

	h.metrics.RecordSignIn(c.Request.Context(), domain.ProviderCredentials, signinResultSuccess)
	h.setSessionCookie(c, token, session.Expires)

	target := h.safeCallbackURL(req.CallbackURL)
	if !isJSON {
		c.Redirect(http.StatusFound, target)
		return
	}

	c.JSON(http.StatusOK, dto.SignInResponse{
		User: session.User,
		URL:  target,
	})
}

func (h *AuthHandler) credentialsFailed(c *gin.Context, isJSON bool) {
	if isJSON {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   ErrCodeCredentialsSignin,
			Message: "Invalid email or password",
		})
		return
	}
	c.Redirect(http.StatusFound, "/auth/login?error="+ErrCodeCredentialsSignin)
}

// Session returns the current session and slides the cookie with refreshed data.
// Signed-out clients get an empty object.
// @Summary Get the current session
// @Tags auth
// @Produce json
// @Success 200 {object} domain.Session
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token, err := c.Cookie(h.cfg.Auth.CookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	refreshed, session, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			h.clearSessionCookie(c)
		} else {
			h.logger.Warn("session refresh failed", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	h.setSessionCookie(c, refreshed, session.Expires)
	c.JSON(http.StatusOK, session)
}

// SignOut revokes the current session and clears its cookie.
// Form posts from the sign-out page are redirected to their callbackUrl.
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.URLResponse
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.signOut(c)

	if c.ContentType() == gin.MIMEPOSTForm {
		c.Redirect(http.StatusFound, h.safeCallbackURL(c.PostForm("callbackUrl")))
		return
	}

	c.JSON(http.StatusOK, dto.URLResponse{URL: "/"})
}

func (h *AuthHandler) signOut(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.Auth.CookieName); err == nil && token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			h.logger.Warn("failed to revoke session", zap.Error(err))
		}
	}
	h.clearSessionCookie(c)
}

// Providers lists the enabled sign-in providers
// @Summary List sign-in providers
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]dto.ProviderInfo
// @Router /auth/providers [get]
func (h *AuthHandler) Providers(c *gin.Context) {
	base := strings.TrimRight(h.cfg.Auth.URL, "/")

	out := make(map[string]dto.ProviderInfo)
	for _, p := range h.providers.Providers() {
		out[p.ID] = dto.ProviderInfo{
			ID:          p.ID,
			Name:        p.Name,
			Type:        p.Type,
			SigninURL:   base + "/api/auth/signin/" + p.ID,
			CallbackURL: h.cfg.Auth.CallbackURL(p.ID),
		}
	}

	c.JSON(http.StatusOK, out)
}

// GetMe returns the stored profile of the signed-in user and its linked accounts
// @Summary Get current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	claims, ok := SessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "User not found",
			})
			return
		}
		h.internalError(c, "failed to load user", err)
		return
	}

	accounts, err := h.accounts.Accounts(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "failed to load accounts", err)
		return
	}

	c.JSON(http.StatusOK, dto.MeResponse{
		User:     user.Profile(),
		Images:   user.ProviderImages,
		Accounts: accounts,
	})
}

func (h *AuthHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: "Internal server error",
	})
}

func (h *AuthHandler) redirectToError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, "/auth/error?error="+url.QueryEscape(code))
}

func (h *AuthHandler) secureCookies() bool {
	return h.cfg.Auth.SecureCookies || strings.HasPrefix(h.cfg.Auth.URL, "https://")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		h.clearSessionCookie(c)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, token, maxAge, "/", "", h.secureCookies(), true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, "", -1, "/", "", h.secureCookies(), true)
}

// safeCallbackURL keeps redirects on this site: relative paths or absolute URLs on AUTH_URL's host
func (h *AuthHandler) safeCallbackURL(raw string) string {
	if raw == "" {
		return "/"
	}

	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\") {
		return raw
	}

	target, err := url.Parse(raw)
	if err != nil {
		return "/"
	}
	base, err := url.Parse(h.cfg.Auth.URL)
	if err != nil || target.Scheme != base.Scheme || target.Host != base.Host {
		return "/"
	}

	return target.String()
}

// validationMessage strips the sentinel prefix and capitalizes the detail
func validationMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		msg = msg[i+len(prefix):]
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
