package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tcghub/poke-tournaments/models"
)

var ErrRegistrationNotFound = errors.New("tournament registration not found")

type RegistrationRepository interface {
	ListByTournamentID(ctx context.Context, tournamentID string) ([]models.TournamentRegistration, error)
	ListByPlayerID(ctx context.Context, playerID string) ([]models.TournamentRegistration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) ListByTournamentID(ctx context.Context, tournamentID string) ([]models.TournamentRegistration, error) {
	query := `
		SELECT id, tournament_id, player_id, deck_list, status, created_at
		FROM tournament_registrations
		WHERE tournament_id = $1
		ORDER BY created_at ASC`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresRegistrationRepository) ListByPlayerID(ctx context.Context, playerID string) ([]models.TournamentRegistration, error) {
	query := `
		SELECT id, tournament_id, player_id, deck_list, status, created_at
		FROM tournament_registrations
		WHERE player_id = $1
		ORDER BY created_at ASC`
	return r.list(ctx, query, playerID)
}

func (r *postgresRegistrationRepository) list(ctx context.Context, query string, arg interface{}) ([]models.TournamentRegistration, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.TournamentRegistration, 0)
	for rows.Next() {
		var reg models.TournamentRegistration
		var deckList []byte
		if scanErr := rows.Scan(
			&reg.ID,
			&reg.TournamentID,
			&reg.PlayerID,
			&deckList,
			&reg.Status,
			&reg.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		reg.DeckList = deckList
		registrations = append(registrations, reg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}
