package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/tcghub/poke-tournaments/models"
	"github.com/tcghub/poke-tournaments/repositories"
)

// landingPageLimit caps the upcoming-tournaments strip on the landing page.
const landingPageLimit = 5

type TournamentService interface {
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	// Upcoming is the landing-page query: published tournaments, soonest
	// first, capped at five.
	Upcoming(ctx context.Context) ([]models.Tournament, error)
	Get(ctx context.Context, id string) (*models.Tournament, error)
	Create(ctx context.Context, shopID string, input TournamentInput) (*models.Tournament, error)
	Update(ctx context.Context, shopID, id string, input TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, shopID, id string) error
	RegistrationCount(ctx context.Context, tournamentID string) (int, error)
	// Registrations is owner-only: deck lists are not public.
	Registrations(ctx context.Context, shopID, tournamentID string) ([]models.TournamentRegistration, error)
}

type TournamentInput struct {
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Date                 time.Time       `json:"date"`
	Location             string          `json:"location"`
	AccessibilityDetails json.RawMessage `json:"accessibility_details,omitempty"`
	Tags                 []string        `json:"tags"`
	SeatLimit            int             `json:"seat_limit"`
	Status               string          `json:"status"`
}

// Validate checks field shape only. Status transitions are deliberately not
// validated: any owner may set any of the known status values.
func (i TournamentInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&i.Description, validation.Required),
		validation.Field(&i.Date, validation.Required),
		validation.Field(&i.Location, validation.Required),
		validation.Field(&i.SeatLimit, validation.Required, validation.Min(1)),
		validation.Field(&i.Status, validation.In(
			string(models.StatusDraft),
			string(models.StatusPublished),
			string(models.StatusCancelled),
			string(models.StatusCompleted),
		)),
	)
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
	}
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) Upcoming(ctx context.Context) ([]models.Tournament, error) {
	published := models.StatusPublished
	return s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status: &published,
		Limit:  landingPageLimit,
	})
}

func (s *tournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) Create(ctx context.Context, shopID string, input TournamentInput) (*models.Tournament, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	status := models.TournamentStatus(input.Status)
	if status == "" {
		status = models.StatusDraft
	}

	tournament := &models.Tournament{
		ID:                   uuid.NewString(),
		Title:                input.Title,
		Description:          input.Description,
		Date:                 input.Date,
		Location:             input.Location,
		AccessibilityDetails: input.AccessibilityDetails,
		Tags:                 input.Tags,
		SeatLimit:            input.SeatLimit,
		ShopID:               shopID,
		Status:               status,
	}
	if tournament.Tags == nil {
		tournament.Tags = []string{}
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) Update(ctx context.Context, shopID, id string, input TournamentInput) (*models.Tournament, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	tournament, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.ShopID != shopID {
		return nil, ErrForbiddenOperation
	}

	tournament.Title = input.Title
	tournament.Description = input.Description
	tournament.Date = input.Date
	tournament.Location = input.Location
	tournament.AccessibilityDetails = input.AccessibilityDetails
	tournament.Tags = input.Tags
	if tournament.Tags == nil {
		tournament.Tags = []string{}
	}
	tournament.SeatLimit = input.SeatLimit
	if input.Status != "" {
		tournament.Status = models.TournamentStatus(input.Status)
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, shopID, id string) error {
	tournament, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if tournament.ShopID != shopID {
		return ErrForbiddenOperation
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (s *tournamentService) RegistrationCount(ctx context.Context, tournamentID string) (int, error) {
	return s.tournamentRepo.CountRegistrations(ctx, tournamentID)
}

func (s *tournamentService) Registrations(ctx context.Context, shopID, tournamentID string) ([]models.TournamentRegistration, error) {
	tournament, err := s.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.ShopID != shopID {
		return nil, ErrForbiddenOperation
	}
	return s.registrationRepo.ListByTournamentID(ctx, tournamentID)
}
