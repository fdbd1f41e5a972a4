package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"github.com/prperemyshlev/account-linker/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumnNames = []string{
	"id", "email", "name", "password_hash", "image", "provider_images",
	"auth_providers", "email_verified_at", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*database.Postgres, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &database.Postgres{DB: db}, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	hash := "$2a$10$hash"
	user := &domain.User{
		Email:         "alice@example.com",
		Name:          "Alice",
		PasswordHash:  &hash,
		AuthProviders: []string{domain.ProviderCredentials},
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "Alice", hash, "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), user)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NotNil(t, user.ProviderImages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumnNames).AddRow(
		"user-1", "alice@example.com", "Alice", nil, "https://img/google.png",
		[]byte(`{"google":"https://img/google.png"}`), "{google,github}", nil, now, now,
	)
	mock.ExpectQuery(`FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Alice@Example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)

	assert.Equal(t, "user-1", user.ID)
	assert.Nil(t, user.PasswordHash)
	assert.Equal(t, []string{"google", "github"}, user.AuthProviders)
	assert.Equal(t, "https://img/google.png", user.ProviderImage("google"))
	assert.Equal(t, "", user.ProviderImage("github"))
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByEmailWithProvider(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	hash := "$2a$10$hash"
	rows := sqlmock.NewRows(userColumnNames).AddRow(
		"user-1", "alice@example.com", "Alice", hash, "", []byte(`{}`), "{credentials}", nil, now, now,
	)
	mock.ExpectQuery(`ANY\(auth_providers\)`).
		WithArgs("alice@example.com", domain.ProviderCredentials).
		WillReturnRows(rows)

	user, err := repo.GetByEmailWithProvider(context.Background(), "alice@example.com", domain.ProviderCredentials)
	require.NoError(t, err)

	assert.True(t, user.HasPassword())
	assert.True(t, user.HasProvider(domain.ProviderCredentials))
}

func TestUserRepository_LinkProvider(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumnNames).AddRow(
		"user-1", "alice@example.com", "Alice", nil, "https://img/google.png",
		[]byte(`{"google":"https://img/google.png"}`), "{google,github}", nil, now, now,
	)
	mock.ExpectQuery(`UPDATE users`).
		WithArgs("user-1", "github", "https://img/github.png", sqlmock.AnyArg()).
		WillReturnRows(rows)

	user, err := repo.LinkProvider(context.Background(), "user-1", "github", "https://img/github.png")
	require.NoError(t, err)

	assert.True(t, user.HasProvider("github"))
	assert.Equal(t, "https://img/google.png", user.ProviderImage("google"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_LinkProvider_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`UPDATE users`).WillReturnError(sql.ErrNoRows)

	_, err := repo.LinkProvider(context.Background(), "missing", "github", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountRepository_CreateAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(sqlmock.AnyArg(), "user-1", "google", "g-123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &domain.Account{UserID: "user-1", Provider: "google", ProviderAccountID: "g-123"}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEmpty(t, account.ID)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "provider", "provider_account_id", "created_at"}).
		AddRow(account.ID, "user-1", "google", "g-123", now).
		AddRow("acc-2", "user-1", "github", "gh-9", now)
	mock.ExpectQuery("FROM accounts").WithArgs("user-1").WillReturnRows(rows)

	accounts, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "github", accounts[1].Provider)
}

func TestAccountRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &domain.Account{UserID: "user-1", Provider: "google", ProviderAccountID: "g-123"})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestAccountRepository_GetByProvider_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery("FROM accounts").WithArgs("google", "nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByProvider(context.Background(), "google", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
