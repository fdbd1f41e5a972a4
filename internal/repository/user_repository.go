package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/pkg/database"
)

const userColumns = `id, email, name, password_hash, image, provider_images, auth_providers, email_verified_at, created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var (
		passwordHash    sql.NullString
		providerImages  []byte
		emailVerifiedAt sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&passwordHash,
		&user.Image,
		&providerImages,
		pq.Array(&user.AuthProviders),
		&emailVerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if emailVerifiedAt.Valid {
		user.EmailVerifiedAt = &emailVerifiedAt.Time
	}
	if len(providerImages) > 0 {
		if err := json.Unmarshal(providerImages, &user.ProviderImages); err != nil {
			return nil, fmt.Errorf("failed to decode provider images: %w", err)
		}
	}
	if user.AuthProviders == nil {
		user.AuthProviders = []string{}
	}

	return user, nil
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, image, provider_images, auth_providers, email_verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	// Generate UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if user.AuthProviders == nil {
		user.AuthProviders = []string{}
	}
	if user.ProviderImages == nil {
		user.ProviderImages = map[string]string{}
	}

	images, err := json.Marshal(user.ProviderImages)
	if err != nil {
		return fmt.Errorf("failed to encode provider images: %w", err)
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Image,
		images,
		pq.Array(user.AuthProviders),
		user.EmailVerifiedAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByEmailWithProvider retrieves a user by email whose provider list includes provider
func (r *userRepository) GetByEmailWithProvider(ctx context.Context, email, provider string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) AND $2::text = ANY(auth_providers)`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email, provider))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s and provider %s not found: %w", email, provider, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email and provider: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// LinkProvider attaches a provider and its avatar to an existing user.
// Both changes are conditional on the current row, so concurrent links never drop each other.
func (r *userRepository) LinkProvider(ctx context.Context, userID, provider, image string) (*domain.User, error) {
	query := `
		UPDATE users
		SET auth_providers = CASE
				WHEN $2::text = ANY(auth_providers) THEN auth_providers
				ELSE array_append(auth_providers, $2::text)
			END,
			provider_images = CASE
				WHEN $3::text <> '' AND NOT (provider_images ? $2::text)
					THEN provider_images || jsonb_build_object($2::text, $3::text)
				ELSE provider_images
			END,
			updated_at = $4
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, userID, provider, image, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to link provider %s: %w", provider, err)
	}

	return user, nil
}
