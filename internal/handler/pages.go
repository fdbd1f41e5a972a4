package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/internal/provider"
	"github.com/prperemyshlev/account-linker/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page templates
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

func sessionView(c *gin.Context) *domain.Session {
	claims, ok := SessionClaims(c)
	if !ok {
		return nil
	}
	return service.SessionFromClaims(claims)
}

// Home renders the landing page with the navigation state
func (h *AuthHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title":   "Home",
		"Session": sessionView(c),
	})
}

// LoginPage renders the sign-in and registration forms
func (h *AuthHandler) LoginPage(c *gin.Context) {
	var oauth []provider.Info
	for _, p := range h.providers.Providers() {
		if p.Type == provider.TypeOAuth {
			oauth = append(oauth, p)
		}
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title":       "Sign In",
		"Session":     sessionView(c),
		"Error":       LoginErrorMessage(c.Query("error")),
		"Providers":   oauth,
		"CallbackURL": h.safeCallbackURL(c.Query("callbackUrl")),
	})
}

// LogoutPage renders the sign-out form. Signing out itself needs a POST to SignOut.
func (h *AuthHandler) LogoutPage(c *gin.Context) {
	c.HTML(http.StatusOK, "logout.html", gin.H{
		"Title":   "Sign Out",
		"Session": sessionView(c),
	})
}

// ErrorPage renders the message for a sign-in error code
func (h *AuthHandler) ErrorPage(c *gin.Context) {
	c.HTML(http.StatusOK, "error.html", gin.H{
		"Title":   "Authentication Error",
		"Session": sessionView(c),
		"Message": ErrorMessage(c.Query("error")),
	})
}
