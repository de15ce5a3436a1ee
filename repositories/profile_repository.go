package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/tcghub/poke-tournaments/models"
)

var (
	ErrProfileNotFound         = errors.New("profile not found")
	ErrProfileUsernameConflict = errors.New("profile username conflict")
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id string) error
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, username, full_name, pokemon_player_id, role, avatar_url, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Username,
		&profile.FullName,
		&profile.PokemonPlayerID,
		&profile.Role,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// Upsert inserts or updates the profile keyed by the identity id, as one
// atomic write.
func (r *postgresProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, username, full_name, pokemon_player_id, role, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, '')::profile_role, 'player'), $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name,
			pokemon_player_id = EXCLUDED.pokemon_player_id,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING role, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.Username,
		profile.FullName,
		profile.PokemonPlayerID,
		string(profile.Role),
		profile.AvatarURL,
	).Scan(&profile.Role, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "profiles_username_key" {
			return ErrProfileUsernameConflict
		}
		return err
	}
	return nil
}

func (r *postgresProfileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM profiles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}
