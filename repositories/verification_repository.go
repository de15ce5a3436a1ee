package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/tcghub/poke-tournaments/models"
)

var (
	ErrVerificationNotFound    = errors.New("shop verification request not found")
	ErrVerificationInvalidUser = errors.New("invalid user reference for verification request")
)

type VerificationRepository interface {
	Create(ctx context.Context, request *models.ShopVerificationRequest) error
	// GetLatestByUserID returns the most recent request for the user, which
	// is the only row display status is derived from.
	GetLatestByUserID(ctx context.Context, userID string) (*models.ShopVerificationRequest, error)
}

type postgresVerificationRepository struct {
	db *sql.DB
}

func NewPostgresVerificationRepository(db *sql.DB) VerificationRepository {
	return &postgresVerificationRepository{db: db}
}

func (r *postgresVerificationRepository) Create(ctx context.Context, req *models.ShopVerificationRequest) error {
	query := `
		INSERT INTO shop_verification_requests (id, user_id, shop_email, shop_id_code, shop_image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		req.ID,
		req.UserID,
		req.ShopEmail,
		req.ShopIDCode,
		req.ShopImageURL,
		req.Status,
	).Scan(&req.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "shop_verification_requests_user_id_fkey" {
			return ErrVerificationInvalidUser
		}
		return err
	}
	return nil
}

func (r *postgresVerificationRepository) GetLatestByUserID(ctx context.Context, userID string) (*models.ShopVerificationRequest, error) {
	query := `
		SELECT id, user_id, shop_email, shop_id_code, shop_image_url, status, created_at
		FROM shop_verification_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	req := &models.ShopVerificationRequest{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&req.ID,
		&req.UserID,
		&req.ShopEmail,
		&req.ShopIDCode,
		&req.ShopImageURL,
		&req.Status,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return req, nil
}
