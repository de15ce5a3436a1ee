package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/tcghub/poke-tournaments/models"
	"github.com/tcghub/poke-tournaments/repositories"
	"github.com/tcghub/poke-tournaments/storage"
)

// maxImageSize is the client-side upload limit, checked before any call to
// object storage.
const maxImageSize = 5 * 1024 * 1024

type VerificationService interface {
	// UploadImage validates the file locally, uploads it under a
	// collision-resistant key and returns the public URL to bind into the
	// pending form. An invalid file is rejected with zero network calls.
	UploadImage(ctx context.Context, userID string, upload ImageUpload) (string, error)
	Submit(ctx context.Context, userID string, input VerificationInput) (*models.ShopVerificationRequest, error)
	Status(ctx context.Context, userID string) (models.VerificationStatus, error)
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type VerificationInput struct {
	ShopEmail    string `json:"shop_email"`
	ShopIDCode   string `json:"shop_id"`
	ShopImageURL string `json:"shop_image"`
}

func (i VerificationInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ShopEmail, validation.Required, is.Email),
		validation.Field(&i.ShopIDCode, validation.Required),
		validation.Field(&i.ShopImageURL, validation.Required.Error(ErrImageRequired.Error())),
	)
}

type verificationService struct {
	userRepo         repositories.UserRepository
	verificationRepo repositories.VerificationRepository
	uploader         storage.FileUploader
	inflight         *inflightGuard
}

func NewVerificationService(
	userRepo repositories.UserRepository,
	verificationRepo repositories.VerificationRepository,
	uploader storage.FileUploader,
) VerificationService {
	return &verificationService{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		uploader:         uploader,
		inflight:         newInflightGuard(),
	}
}

func (s *verificationService) UploadImage(ctx context.Context, userID string, upload ImageUpload) (string, error) {
	if upload.Size > maxImageSize {
		return "", ErrImageTooLarge
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return "", ErrImageWrongType
	}

	ext := path.Ext(upload.Filename)
	if ext == "" {
		var err error
		ext, err = extensionFromContentType(upload.ContentType)
		if err != nil {
			return "", ErrImageWrongType
		}
	}

	// Timestamp prefix plus random suffix keeps two uploads of the same
	// filename from ever colliding.
	key := fmt.Sprintf("shop-verification/%s/%d-%s%s", userID, time.Now().UnixMilli(), uuid.NewString(), ext)

	result, err := s.uploader.Upload(ctx, key, upload.ContentType, upload.Body)
	if err != nil {
		return "", fmt.Errorf("failed to upload shop image (key: %s): %w", key, err)
	}
	if result.Location == "" {
		return "", errors.New("failed to resolve public URL for uploaded image")
	}

	return result.Location, nil
}

func (s *verificationService) Submit(ctx context.Context, userID string, input VerificationInput) (*models.ShopVerificationRequest, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.inflight.begin("verification:" + userID); err != nil {
		return nil, err
	}
	defer s.inflight.end("verification:" + userID)

	req := &models.ShopVerificationRequest{
		ID:           uuid.NewString(),
		UserID:       userID,
		ShopEmail:    input.ShopEmail,
		ShopIDCode:   input.ShopIDCode,
		ShopImageURL: input.ShopImageURL,
		Status:       models.VerificationPending,
	}

	if err := s.verificationRepo.Create(ctx, req); err != nil {
		if errors.Is(err, repositories.ErrVerificationInvalidUser) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to submit verification request: %w", err)
	}
	return req, nil
}

func (s *verificationService) Status(ctx context.Context, userID string) (models.VerificationStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.VerificationNone, ErrUserNotFound
		}
		return models.VerificationNone, err
	}

	latest, err := s.verificationRepo.GetLatestByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repositories.ErrVerificationNotFound) {
		return models.VerificationNone, err
	}

	return deriveVerificationStatus(user, latest), nil
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
