package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/account-linker/internal/config"
	"github.com/prperemyshlev/account-linker/internal/handler"
	"github.com/prperemyshlev/account-linker/internal/provider"
	"github.com/prperemyshlev/account-linker/internal/repository"
	"github.com/prperemyshlev/account-linker/internal/service"
	"github.com/prperemyshlev/account-linker/internal/utils"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	repos := repository.NewRepositories(infra.Postgres())

	metrics, err := service.NewAuthMetrics(infra.Telemetry().Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to create auth metrics: %w", err)
	}

	jwtManager := utils.NewJWTManager(cfg.Auth.Secret)
	revoker := service.NewRedisTokenRevoker(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())

	authService := service.NewAuthService(repos.User, cfg.Security.BCryptCost, metrics, logger)
	accountService := service.NewAccountService(repos.User, repos.Account, metrics, logger)
	sessionService := service.NewSessionService(
		jwtManager,
		repos.User,
		revoker,
		cfg.Auth.SessionMaxAge.Duration,
		logger,
	)

	providers := provider.NewRegistry(cfg, logger)
	for _, p := range providers.Providers() {
		logger.Info("Sign-in provider enabled", zap.String("provider", p.ID))
	}

	router := handler.NewRouter(handler.Dependencies{
		Config:         cfg,
		Auth:           authService,
		Accounts:       accountService,
		Sessions:       sessionService,
		Providers:      providers,
		RateLimiter:    rateLimiter,
		Metrics:        metrics,
		MetricsHandler: infra.Telemetry().Handler,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("auth_url", a.config.Auth.URL),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// stop accepting requests before closing the stores they use
	serverErr := a.server.Shutdown(ctx)
	infraErr := a.infra.Shutdown(ctx)

	if err := errors.Join(serverErr, infraErr); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
