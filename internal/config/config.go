package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prperemyshlev/account-linker/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	Google   OAuthClient    `env:",prefix=GOOGLE_CLIENT_"`
	GitHub   OAuthClient    `env:",prefix=GITHUB_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host          string `env:"HOST,default=localhost"`
	Port          string `env:"PORT,default=5432"`
	User          string `env:"USER,default=account_linker"`
	Password      string `env:"PASSWORD,default=account_linker_password"`
	DBName        string `env:"DB,default=account_linker_db"`
	SSLMode       string `env:"SSLMODE,default=disable"`
	MigrateOnBoot bool   `env:"MIGRATE,default=true"`

	MaxOpenConns    int      `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns    int      `env:"MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime Duration `env:"CONN_MAX_LIFETIME,default=30m"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
	PoolSize int    `env:"POOL_SIZE,default=10"`
}

type AuthConfig struct {
	Secret        string   `env:"SECRET,required"`
	URL           string   `env:"URL,default=http://localhost:8080"`
	SessionMaxAge Duration `env:"SESSION_MAX_AGE,default=30d"`
	CookieName    string   `env:"COOKIE_NAME,default=session_token"`
	SecureCookies bool     `env:"SECURE_COOKIES,default=false"`
}

// OAuthClient holds the client credentials of one OAuth provider.
// Google reads GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET, GitHub reads GITHUB_ID/GITHUB_SECRET.
type OAuthClient struct {
	ID     string `env:"ID,default="`
	Secret string `env:"SECRET,default="`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=10"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// Configured reports whether both client id and secret are set
func (o OAuthClient) Configured() bool {
	return o.ID != "" && o.Secret != ""
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns PostgreSQL connection URL, as expected by golang-migrate
func (p PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%s", p.Host, p.Port),
		Path:     p.DBName,
		RawQuery: "sslmode=" + p.SSLMode,
	}
	return u.String()
}

// Pool returns the connection pool settings
func (p PostgresConfig) Pool() database.PoolConfig {
	return database.PoolConfig{
		MaxOpenConns:    p.MaxOpenConns,
		MaxIdleConns:    p.MaxIdleConns,
		ConnMaxLifetime: p.ConnMaxLifetime.Duration,
	}
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Options returns the go-redis client options
func (r RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:     r.Address(),
		Password: r.Password,
		DB:       r.DB,
		PoolSize: r.PoolSize,
	}
}

// CallbackURL returns the OAuth redirect URL for a provider
func (a AuthConfig) CallbackURL(provider string) string {
	return strings.TrimRight(a.URL, "/") + "/api/auth/callback/" + provider
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load() // not an error - production environments may not have .env file

	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.Auth.Secret) < 32 {
		return nil, fmt.Errorf("AUTH_SECRET must be at least 32 characters long")
	}

	if config.Auth.SessionMaxAge.Duration <= 0 {
		return nil, fmt.Errorf("AUTH_SESSION_MAX_AGE must be positive")
	}

	return &config, nil
}
