package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/postgres"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// YearRepository provides access to exam sittings in the database.
type YearRepository struct {
	db postgres.DBTX
}

// NewYearRepository creates a new YearRepository.
func NewYearRepository(db postgres.DBTX) *YearRepository {
	return &YearRepository{db: db}
}

// Create inserts an exam sitting and fills its ID.
func (r *YearRepository) Create(ctx context.Context, y *entities.Year) error {
	query := `
		INSERT INTO years (year, season, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (year, season) DO NOTHING
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, y.Year, y.Season, y.CreatedAt).Scan(&y.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create year: %w", err)
	}

	return nil
}

// Get retrieves an exam sitting by its natural key.
func (r *YearRepository) Get(ctx context.Context, year int, season string) (*entities.Year, error) {
	query := `
		SELECT id, year, season, created_at
		FROM years
		WHERE year = $1 AND season = $2
	`

	var y entities.Year
	err := r.db.QueryRow(ctx, query, year, season).Scan(&y.ID, &y.Year, &y.Season, &y.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrYearNotFound
		}
		return nil, fmt.Errorf("get year: %w", err)
	}

	return &y, nil
}

// List returns all exam sittings, newest first.
func (r *YearRepository) List(ctx context.Context) ([]*entities.Year, error) {
	query := `
		SELECT id, year, season, created_at
		FROM years
		ORDER BY year DESC, season
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []*entities.Year
	for rows.Next() {
		var y entities.Year
		if err := rows.Scan(&y.ID, &y.Year, &y.Season, &y.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, &y)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}

	return years, nil
}
