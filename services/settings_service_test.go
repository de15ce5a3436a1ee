package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcghub/poke-tournaments/models"
)

func newSettingsFixture(t *testing.T) (*fakeUserRepo, *fakeProfileRepo, *fakeVerificationRepo, SettingsService) {
	t.Helper()
	userRepo := newFakeUserRepo()
	profileRepo := newFakeProfileRepo()
	verificationRepo := newFakeVerificationRepo()
	svc := NewSettingsService(userRepo, profileRepo, verificationRepo)
	return userRepo, profileRepo, verificationRepo, svc
}

func TestSettingsService_LoadView(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates profile, verification and account state", func(t *testing.T) {
		userRepo, profileRepo, verificationRepo, svc := newSettingsFixture(t)
		require.NoError(t, userRepo.Create(ctx, &models.User{
			ID:              "u1",
			Email:           "ash@example.com",
			LinkedProviders: []string{"github"},
		}))
		username := "ash"
		fullName := "Ash Ketchum"
		require.NoError(t, profileRepo.Upsert(ctx, &models.Profile{
			ID:       "u1",
			Username: &username,
			FullName: &fullName,
		}))
		require.NoError(t, verificationRepo.Create(ctx, &models.ShopVerificationRequest{
			ID:     "v1",
			UserID: "u1",
			Status: models.VerificationPending,
		}))

		view, err := svc.LoadView(ctx, "u1")
		require.NoError(t, err)

		require.NotNil(t, view.Profile)
		assert.Equal(t, "ash", *view.Profile.Username)
		assert.Equal(t, models.VerificationPending, view.VerificationStatus)
		assert.Equal(t, []string{"github"}, view.LinkedProviders)
		assert.False(t, view.DeletionRequested)
	})

	t.Run("missing profile and verification rows are not errors", func(t *testing.T) {
		userRepo, _, _, svc := newSettingsFixture(t)
		require.NoError(t, userRepo.Create(ctx, &models.User{ID: "u1", Email: "ash@example.com"}))

		view, err := svc.LoadView(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, view.Profile)
		assert.Equal(t, models.VerificationNone, view.VerificationStatus)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, _, svc := newSettingsFixture(t)
		_, err := svc.LoadView(ctx, "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestSettingsService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("short username is rejected", func(t *testing.T) {
		_, _, _, svc := newSettingsFixture(t)
		_, err := svc.UpdateProfile(ctx, "u1", ProfileInput{Username: "ab", FullName: "Ash Ketchum"})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("taken username surfaces the conflict", func(t *testing.T) {
		_, profileRepo, _, svc := newSettingsFixture(t)
		taken := "ash"
		name := "Other Ash"
		require.NoError(t, profileRepo.Upsert(ctx, &models.Profile{ID: "u2", Username: &taken, FullName: &name}))

		_, err := svc.UpdateProfile(ctx, "u1", ProfileInput{Username: "ash", FullName: "Ash Ketchum"})
		assert.ErrorIs(t, err, ErrProfileUsernameConflict)
	})

	t.Run("upsert keyed by the session identity", func(t *testing.T) {
		_, profileRepo, _, svc := newSettingsFixture(t)

		profile, err := svc.UpdateProfile(ctx, "u1", ProfileInput{
			Username: "ash",
			FullName: "Ash Ketchum",
		})
		require.NoError(t, err)
		assert.Equal(t, "u1", profile.ID)
		assert.Nil(t, profile.PokemonPlayerID, "empty optional field stays null")

		stored, err := profileRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "ash", *stored.Username)
	})
}

func TestSettingsService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, userRepo *fakeUserRepo, profileRepo *fakeProfileRepo) {
		t.Helper()
		require.NoError(t, userRepo.Create(ctx, &models.User{ID: "u1", Email: "ash@example.com"}))
		username := "ash"
		name := "Ash Ketchum"
		require.NoError(t, profileRepo.Upsert(ctx, &models.Profile{ID: "u1", Username: &username, FullName: &name}))
	}

	t.Run("wrong confirmation phrase stops everything", func(t *testing.T) {
		userRepo, profileRepo, _, svc := newSettingsFixture(t)
		seed(t, userRepo, profileRepo)

		err := svc.DeleteAccount(ctx, "u1", DeleteAccountInput{Confirm: "yes please"})
		assert.ErrorIs(t, err, ErrDeletionNotConfirmed)
		assert.Zero(t, profileRepo.deleteCalls)
		assert.Zero(t, userRepo.markDeletionCalls)
	})

	t.Run("runs the full sequence in order", func(t *testing.T) {
		userRepo, profileRepo, _, svc := newSettingsFixture(t)
		seed(t, userRepo, profileRepo)

		require.NoError(t, svc.DeleteAccount(ctx, "u1", DeleteAccountInput{Confirm: "delete my account"}))

		_, err := profileRepo.GetByID(ctx, "u1")
		assert.Error(t, err, "profile row is gone")

		user, err := userRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, user.DeletionRequested, "identity is soft-marked, never hard-deleted")
		assert.NotNil(t, user.DeletionRequestedAt)
	})

	t.Run("profile delete failure aborts before the identity is marked", func(t *testing.T) {
		userRepo, profileRepo, _, svc := newSettingsFixture(t)
		seed(t, userRepo, profileRepo)
		profileRepo.deleteErr = errors.New("connection reset")

		err := svc.DeleteAccount(ctx, "u1", DeleteAccountInput{Confirm: "delete my account"})
		require.Error(t, err)
		assert.Zero(t, userRepo.markDeletionCalls, "no compensation, no partial mark")
	})

	t.Run("a user without a profile row can still request deletion", func(t *testing.T) {
		userRepo, _, _, svc := newSettingsFixture(t)
		require.NoError(t, userRepo.Create(ctx, &models.User{ID: "u1", Email: "ash@example.com"}))

		require.NoError(t, svc.DeleteAccount(ctx, "u1", DeleteAccountInput{Confirm: "delete my account"}))

		user, err := userRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, user.DeletionRequested)
	})
}

func TestSettingsService_ProviderLinking(t *testing.T) {
	ctx := context.Background()

	t.Run("authorize URL escapes the return path", func(t *testing.T) {
		_, _, _, svc := newSettingsFixture(t)

		url, err := svc.ProviderAuthorizeURL("github", "https://poke.example.com/dashboard/settings")
		require.NoError(t, err)
		assert.Contains(t, url, "https://github.com/login/oauth/authorize?redirect_to=")
		assert.Contains(t, url, "https%3A%2F%2Fpoke.example.com%2Fdashboard%2Fsettings")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, _, _, svc := newSettingsFixture(t)
		_, err := svc.ProviderAuthorizeURL("myspace", "https://poke.example.com/")
		assert.ErrorIs(t, err, ErrUnsupportedProvider)

		assert.ErrorIs(t, svc.CompleteProviderLink(ctx, "u1", "myspace"), ErrUnsupportedProvider)
	})

	t.Run("linking is idempotent", func(t *testing.T) {
		userRepo, _, _, svc := newSettingsFixture(t)
		require.NoError(t, userRepo.Create(ctx, &models.User{ID: "u1", Email: "ash@example.com"}))

		require.NoError(t, svc.CompleteProviderLink(ctx, "u1", "github"))
		require.NoError(t, svc.CompleteProviderLink(ctx, "u1", "github"))

		user, err := userRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"github"}, []string(user.LinkedProviders))
	})
}

func TestDeriveVerificationStatus(t *testing.T) {
	pending := &models.ShopVerificationRequest{Status: models.VerificationPending}

	cases := []struct {
		name   string
		user   *models.User
		latest *models.ShopVerificationRequest
		want   models.VerificationStatus
	}{
		{"verified beats pending", &models.User{VerifiedShop: true}, pending, models.VerificationVerified},
		{"pending request", &models.User{}, pending, models.VerificationPending},
		{"no request", &models.User{}, nil, models.VerificationNone},
		{"nil user", nil, pending, models.VerificationPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deriveVerificationStatus(tc.user, tc.latest))
		})
	}
}
