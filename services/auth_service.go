package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tcghub/poke-tournaments/models"
	"github.com/tcghub/poke-tournaments/repositories"
)

const minPasswordLength = 8

type AuthService interface {
	// Register creates an unconfirmed account and returns the confirmation
	// token. It never establishes a session: email verification is required
	// before the first sign-in.
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	ConfirmEmail(ctx context.Context, token string) error
	// ChangePassword re-authenticates with the current password before
	// issuing the update. The re-check is load-bearing: an existing session
	// token alone must not be enough to rotate credentials.
	ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i RegisterInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email),
		validation.Field(&i.Password, validation.Required, validation.Length(minPasswordLength, 72)),
	)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i LoginInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required),
		validation.Field(&i.Password, validation.Required),
	)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (i ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.CurrentPassword, validation.Required),
		validation.Field(&i.NewPassword, validation.Required, validation.Length(minPasswordLength, 72)),
		validation.Field(&i.ConfirmPassword, validation.Required, validation.By(func(value interface{}) error {
			if s, _ := value.(string); s != i.NewPassword {
				return ErrPasswordMismatch
			}
			return nil
		})),
	)
}

type authService struct {
	userRepo repositories.UserRepository
	inflight *inflightGuard
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
		inflight: newInflightGuard(),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	if err := input.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.inflight.begin("sign-up:" + input.Email); err != nil {
		return nil, "", err
	}
	defer s.inflight.end("sign-up:" + input.Email)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	confirmationToken := generateRandomToken(32)

	user := &models.User{
		ID:                uuid.NewString(),
		Email:             input.Email,
		PasswordHash:      string(hashedPassword),
		EmailConfirmed:    false,
		ConfirmationToken: &confirmationToken,
		LinkedProviders:   []string{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, "", ErrUserEmailConflict
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, confirmationToken, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.inflight.begin("sign-in:" + input.Email); err != nil {
		return nil, err
	}
	defer s.inflight.end("sign-in:" + input.Email)

	user, err := s.verifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if !user.EmailConfirmed {
		return nil, ErrAuthEmailNotConfirmed
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByConfirmationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired confirmation token: %w", err)
	}
	if user.EmailConfirmed {
		return fmt.Errorf("email already confirmed")
	}
	if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	if err := input.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.inflight.begin("password:" + userID); err != nil {
		return err
	}
	defer s.inflight.end("password:" + userID)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	// Step (a): confirm the caller actually knows the current password.
	// Step (b) must never run when this fails.
	if _, err := s.verifyCredentials(ctx, user.Email, input.CurrentPassword); err != nil {
		return ErrCurrentPasswordWrong
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// verifyCredentials is the single credential check shared by sign-in and the
// password-change pre-flight.
func (s *authService) verifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	return user, nil
}

func generateRandomToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		for i := range b {
			b[i] = charset[int(time.Now().UnixNano())%len(charset)]
		}
		return string(b)
	}
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b)
}
