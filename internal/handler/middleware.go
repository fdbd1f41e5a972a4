package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/dto"
	"github.com/prperemyshlev/account-linker/internal/service"
	"go.uber.org/zap"
)

const (
	claimsKey = "session_claims"
	userIDKey = "user_id"
)

// SessionMiddleware loads the session from the session cookie when one is present.
// Requests without a valid session pass through unauthenticated.
func SessionMiddleware(sessions service.SessionService, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidSession) {
				logger.Warn("session validation failed", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userIDKey, claims.UserID())

		c.Next()
	}
}

// RequireSession rejects requests that SessionMiddleware did not authenticate
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionClaims(c); !ok {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authentication required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SessionClaims returns the claims of the authenticated session, if any
func SessionClaims(c *gin.Context) (*domain.SessionClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.SessionClaims)
	return claims, ok
}
