package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// YearRepository provides access to exam sittings in the database.
type YearRepository struct {
	db sqlite.DBTX
}

// NewYearRepository creates a new YearRepository.
func NewYearRepository(db sqlite.DBTX) *YearRepository {
	return &YearRepository{db: db}
}

// Create inserts an exam sitting and fills its ID.
func (r *YearRepository) Create(ctx context.Context, y *entities.Year) error {
	query := `
		INSERT OR IGNORE INTO years (year, season, created_at)
		VALUES (?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, y.Year, y.Season, y.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("create year: %w", err)
	}

	id, err := insertedID(res)
	if err != nil {
		return fmt.Errorf("create year: %w", err)
	}
	y.ID = id

	return nil
}

// Get retrieves an exam sitting by its natural key.
func (r *YearRepository) Get(ctx context.Context, year int, season string) (*entities.Year, error) {
	query := `
		SELECT id, year, season, created_at
		FROM years
		WHERE year = ? AND season = ?
	`

	var y entities.Year
	err := r.db.QueryRowContext(ctx, query, year, season).Scan(&y.ID, &y.Year, &y.Season, &y.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	rows, err := r.db.QueryContext(ctx, query)
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
