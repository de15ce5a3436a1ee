package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/sync/errgroup"

	"github.com/tcghub/poke-tournaments/models"
	"github.com/tcghub/poke-tournaments/repositories"
)

// linkableProviders are the third-party identity providers a user may
// connect from the settings page.
var linkableProviders = map[string]string{
	"github": "https://github.com/login/oauth/authorize",
	"google": "https://accounts.google.com/o/oauth2/v2/auth",
}

type SettingsService interface {
	LoadView(ctx context.Context, userID string) (*SettingsView, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*models.Profile, error)
	// DeleteAccount runs the deletion sequence: remove the profile row, then
	// soft-mark the identity. The identity row itself is never hard-deleted
	// from this side; a failure mid-sequence aborts the remaining steps and
	// is not compensated.
	DeleteAccount(ctx context.Context, userID string, input DeleteAccountInput) error
	ProviderAuthorizeURL(provider, returnTo string) (string, error)
	CompleteProviderLink(ctx context.Context, userID, provider string) error
}

// SettingsView is everything the settings page needs in one load.
type SettingsView struct {
	Profile            *models.Profile           `json:"profile"`
	VerificationStatus models.VerificationStatus `json:"verification_status"`
	LinkedProviders    []string                  `json:"linked_providers"`
	DeletionRequested  bool                      `json:"deletion_requested"`
}

type ProfileInput struct {
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	PokemonPlayerID string `json:"pokemon_player_id"`
}

func (i ProfileInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&i.FullName, validation.Required, validation.Length(3, 100)),
		validation.Field(&i.PokemonPlayerID, validation.Length(0, 50)),
	)
}

// DeleteAccountInput gates the destructive action behind an explicit
// confirmation phrase, the API equivalent of the confirm dialog.
type DeleteAccountInput struct {
	Confirm string `json:"confirm"`
}

type settingsService struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	verificationRepo repositories.VerificationRepository
	inflight         *inflightGuard
}

func NewSettingsService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	verificationRepo repositories.VerificationRepository,
) SettingsService {
	return &settingsService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		verificationRepo: verificationRepo,
		inflight:         newInflightGuard(),
	}
}

func (s *settingsService) LoadView(ctx context.Context, userID string) (*SettingsView, error) {
	var (
		user    *models.User
		profile *models.Profile
		latest  *models.ShopVerificationRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.userRepo.GetByID(gctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		p, err := s.profileRepo.GetByID(gctx, userID)
		if err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		v, err := s.verificationRepo.GetLatestByUserID(gctx, userID)
		if err != nil && !errors.Is(err, repositories.ErrVerificationNotFound) {
			return err
		}
		latest = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SettingsView{
		Profile:            profile,
		VerificationStatus: deriveVerificationStatus(user, latest),
		LinkedProviders:    user.LinkedProviders,
		DeletionRequested:  user.DeletionRequested,
	}, nil
}

func (s *settingsService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*models.Profile, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.inflight.begin("profile:" + userID); err != nil {
		return nil, err
	}
	defer s.inflight.end("profile:" + userID)

	profile := &models.Profile{
		ID:              userID,
		Username:        &input.Username,
		FullName:        &input.FullName,
		PokemonPlayerID: optionalString(input.PokemonPlayerID),
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrProfileUsernameConflict) {
			return nil, ErrProfileUsernameConflict
		}
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return profile, nil
}

func (s *settingsService) DeleteAccount(ctx context.Context, userID string, input DeleteAccountInput) error {
	if input.Confirm != "delete my account" {
		return ErrDeletionNotConfirmed
	}

	if err := s.inflight.begin("delete:" + userID); err != nil {
		return err
	}
	defer s.inflight.end("delete:" + userID)

	// A user without a profile row can still request deletion; the remote
	// treats deleting zero rows as success.
	if err := s.profileRepo.Delete(ctx, userID); err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if err := s.userRepo.MarkDeletionRequested(ctx, userID, time.Now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to mark account for deletion: %w", err)
	}

	return nil
}

func (s *settingsService) ProviderAuthorizeURL(provider, returnTo string) (string, error) {
	base, ok := linkableProviders[provider]
	if !ok {
		return "", ErrUnsupportedProvider
	}
	return base + "?redirect_to=" + url.QueryEscape(returnTo), nil
}

func (s *settingsService) CompleteProviderLink(ctx context.Context, userID, provider string) error {
	if _, ok := linkableProviders[provider]; !ok {
		return ErrUnsupportedProvider
	}
	if err := s.userRepo.AddLinkedProvider(ctx, userID, provider); err != nil {
		return fmt.Errorf("failed to record linked provider: %w", err)
	}
	return nil
}

// deriveVerificationStatus gives identity metadata precedence over any
// locally-held request: verified beats pending beats none.
func deriveVerificationStatus(user *models.User, latest *models.ShopVerificationRequest) models.VerificationStatus {
	if user != nil && user.VerifiedShop {
		return models.VerificationVerified
	}
	if latest != nil && latest.Status == models.VerificationPending {
		return models.VerificationPending
	}
	return models.VerificationNone
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
