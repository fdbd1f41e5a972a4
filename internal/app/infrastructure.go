package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/account-linker/internal/config"
	"github.com/prperemyshlev/account-linker/internal/handler"
	"github.com/prperemyshlev/account-linker/pkg/database"
	"github.com/prperemyshlev/account-linker/pkg/observability"
	"go.uber.org/zap"
)

// Infrastructure owns the external connections the application runs on
type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Logger() *zap.Logger
	Telemetry() *observability.Telemetry

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres  *database.Postgres
	redis     *database.Redis
	logger    *zap.Logger
	telemetry *observability.Telemetry
}

var _ Infrastructure = &infrastructure{}

// NewInfrastructure connects to PostgreSQL and Redis, applies pending
// migrations when enabled and starts the metrics pipeline
func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	if cfg.Postgres.MigrateOnBoot {
		if err := database.RunMigrations(cfg.Postgres.URL()); err != nil {
			return nil, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
		}
		logger.Info("Database schema is up to date")
	}

	postgres, err := database.NewPostgres(ctx, cfg.Postgres.DSN(), cfg.Postgres.Pool())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	i.postgres = postgres

	redis, err := database.NewRedis(ctx, cfg.Redis.Options())
	if err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	telemetry, err := observability.InitTelemetry(handler.ServiceName)
	if err != nil {
		_ = i.postgres.Close()
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.telemetry = telemetry

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) Telemetry() *observability.Telemetry {
	return i.telemetry
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 3)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.telemetry.Shutdown(ctx) }()

	err := errors.Join(<-errs, <-errs, <-errs)

	// stderr sync fails on some platforms; the result is informational only
	_ = i.logger.Sync()

	return err
}
