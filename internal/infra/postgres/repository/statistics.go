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

// StatisticsRepository provides access to the singleton statistics row.
type StatisticsRepository struct {
	db postgres.DBTX
}

// NewStatisticsRepository creates a new StatisticsRepository.
func NewStatisticsRepository(db postgres.DBTX) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Get reads the statistics row. FOR UPDATE keeps read-then-rewrite inside a
// transaction serialized against concurrent writers.
func (r *StatisticsRepository) Get(ctx context.Context) (*entities.Statistics, error) {
	query := `
		SELECT total_answered, total_correct, correct_rate, total_study_seconds,
		       last_studied_at, updated_at
		FROM statistics
		WHERE id = 1
		FOR UPDATE
	`

	var s entities.Statistics
	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalAnswered,
		&s.TotalCorrect,
		&s.CorrectRate,
		&s.TotalStudySeconds,
		&s.LastStudiedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrStatisticsNotFound
		}
		return nil, fmt.Errorf("get statistics: %w", err)
	}

	return &s, nil
}

// Save creates or overwrites the statistics row.
func (r *StatisticsRepository) Save(ctx context.Context, s *entities.Statistics) error {
	query := `
		INSERT INTO statistics (
			id, total_answered, total_correct, correct_rate,
			total_study_seconds, last_studied_at, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			total_answered = EXCLUDED.total_answered,
			total_correct = EXCLUDED.total_correct,
			correct_rate = EXCLUDED.correct_rate,
			total_study_seconds = EXCLUDED.total_study_seconds,
			last_studied_at = EXCLUDED.last_studied_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(
		ctx,
		query,
		s.TotalAnswered,
		s.TotalCorrect,
		s.CorrectRate,
		s.TotalStudySeconds,
		s.LastStudiedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save statistics: %w", err)
	}

	return nil
}
