package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/tcghub/poke-tournaments/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByConfirmationToken(ctx context.Context, token string) (*models.User, error)
	ConfirmEmail(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
	MarkDeletionRequested(ctx context.Context, id string, at time.Time) error
	AddLinkedProvider(ctx context.Context, id string, provider string) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, email_confirmed, confirmation_token,
	verified_shop, deletion_requested, deletion_requested_at,
	linked_providers, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, email_confirmed, confirmation_token, linked_providers)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.EmailConfirmed,
		user.ConfirmationToken,
		pq.Array(user.LinkedProviders),
	).Scan(&user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) GetByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE confirmation_token = $1`
	return r.scanUser(ctx, query, token)
}

func (r *postgresUserRepository) ConfirmEmail(ctx context.Context, id string) error {
	query := `UPDATE users SET email_confirmed = TRUE, confirmation_token = NULL WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) MarkDeletionRequested(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET deletion_requested = TRUE, deletion_requested_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) AddLinkedProvider(ctx context.Context, id string, provider string) error {
	// array_append only if not already present, so repeat callbacks stay idempotent
	query := `
		UPDATE users
		SET linked_providers = array_append(linked_providers, $1)
		WHERE id = $2 AND NOT ($1 = ANY(linked_providers))`
	if _, err := r.db.ExecContext(ctx, query, provider, id); err != nil {
		return err
	}
	return nil
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.EmailConfirmed,
		&user.ConfirmationToken,
		&user.VerifiedShop,
		&user.DeletionRequested,
		&user.DeletionRequestedAt,
		&user.LinkedProviders,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
