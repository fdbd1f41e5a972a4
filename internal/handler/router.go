package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-linker/internal/config"
	"github.com/prperemyshlev/account-linker/internal/provider"
	"github.com/prperemyshlev/account-linker/internal/service"
	"github.com/prperemyshlev/account-linker/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// ServiceName identifies the service in telemetry
const ServiceName = "account-linker"

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	Config         *config.Config
	Auth           service.AuthService
	Accounts       service.AccountService
	Sessions       service.SessionService
	Providers      *provider.Registry
	RateLimiter    *service.RateLimiter
	Metrics        *service.AuthMetrics
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with all routes
func NewRouter(d Dependencies) *gin.Engine {
	cfg := d.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(LoggerMiddleware(d.Logger, "/metrics"))
	router.Use(CORSMiddleware(cfg.CORS))
	router.SetHTMLTemplate(Templates())

	authHandler := NewAuthHandler(cfg, d.Auth, d.Accounts, d.Sessions, d.Providers, d.Metrics, d.Logger)
	debugHandler := NewDebugHandler(cfg)

	session := SessionMiddleware(d.Sessions, cfg.Auth.CookieName, d.Logger)
	rateLimit := RateLimitMiddleware(
		d.RateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		RouteAndIPKey,
		d.Logger,
	)

	router.GET("/metrics", observability.PrometheusHandler(d.MetricsHandler))

	router.GET("/", session, authHandler.Home)
	router.GET("/signin-google", authHandler.SigninGoogle)

	pages := router.Group("/auth", session)
	{
		pages.GET("/login", authHandler.LoginPage)
		pages.GET("/logout", authHandler.LogoutPage)
		pages.GET("/error", authHandler.ErrorPage)
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", rateLimit, authHandler.Register)
			auth.GET("/providers", authHandler.Providers)
			auth.GET("/signin/:provider", authHandler.SignIn)
			auth.POST("/callback/credentials", rateLimit, authHandler.CredentialsSignIn)
			auth.GET("/callback/:provider", authHandler.OAuthCallback)
			auth.GET("/session", authHandler.Session)
			auth.POST("/signout", authHandler.SignOut)
			auth.GET("/me", session, RequireSession(), authHandler.GetMe)
		}

		api.GET("/debug/auth-config", debugHandler.AuthConfig)
	}

	return router
}
