package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/tcghub/poke-tournaments/models"
)

var (
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrTournamentInvalidShop = errors.New("invalid shop reference")
)

// ListTournamentsFilter composes the optional query parameters of the
// listing endpoints. Tags filtering is superset containment: a tournament
// matches only if its tag set contains every supplied tag.
type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	ShopID *string
	Tags   []string
	Limit  int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id string) error
	CountRegistrations(ctx context.Context, tournamentID string) (int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, title, description, date, location, accessibility_details,
	tags, seat_limit, shop_id, status, created_at, updated_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			id, title, description, date, location, accessibility_details,
			tags, seat_limit, shop_id, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Title, t.Description, t.Date, t.Location, nullableJSON(t.AccessibilityDetails),
		pq.Array(t.Tags), t.SeatLimit, t.ShopID, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	var details []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Date, &t.Location, &details,
		&t.Tags, &t.SeatLimit, &t.ShopID, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.AccessibilityDetails = details
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.ShopID != nil {
		query += fmt.Sprintf(" AND shop_id = $%d", argID)
		args = append(args, *filter.ShopID)
		argID++
	}
	if len(filter.Tags) > 0 {
		query += fmt.Sprintf(" AND tags @> $%d", argID)
		args = append(args, pq.Array(filter.Tags))
		argID++
	}

	query += " ORDER BY date ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		var details []byte
		if scanErr := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Date, &t.Location, &details,
			&t.Tags, &t.SeatLimit, &t.ShopID, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		t.AccessibilityDetails = details
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			title = $1,
			description = $2,
			date = $3,
			location = $4,
			accessibility_details = $5,
			tags = $6,
			seat_limit = $7,
			status = $8,
			updated_at = NOW()
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.Date, t.Location, nullableJSON(t.AccessibilityDetails),
		pq.Array(t.Tags), t.SeatLimit, t.Status,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}

	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) CountRegistrations(ctx context.Context, tournamentID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tournament_registrations
		WHERE tournament_id = $1 AND status <> 'cancelled'`

	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "tournaments_shop_id_fkey" {
		return ErrTournamentInvalidShop
	}
	return err
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
