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

// StatisticsRepository provides access to the singleton statistics row.
type StatisticsRepository struct {
	db sqlite.DBTX
}

// NewStatisticsRepository creates a new StatisticsRepository.
func NewStatisticsRepository(db sqlite.DBTX) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Get reads the statistics row.
func (r *StatisticsRepository) Get(ctx context.Context) (*entities.Statistics, error) {
	query := `
		SELECT total_answered, total_correct, correct_rate, total_study_seconds,
		       last_studied_at, updated_at
		FROM statistics
		WHERE id = 1
	`

	var (
		s           entities.Statistics
		lastStudied sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalAnswered,
		&s.TotalCorrect,
		&s.CorrectRate,
		&s.TotalStudySeconds,
		&lastStudied,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStatisticsNotFound
		}
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	s.LastStudiedAt = timePtr(lastStudied)

	return &s, nil
}

// Save creates or overwrites the statistics row.
func (r *StatisticsRepository) Save(ctx context.Context, s *entities.Statistics) error {
	query := `
		INSERT INTO statistics (
			id, total_answered, total_correct, correct_rate,
			total_study_seconds, last_studied_at, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			total_answered = excluded.total_answered,
			total_correct = excluded.total_correct,
			correct_rate = excluded.correct_rate,
			total_study_seconds = excluded.total_study_seconds,
			last_studied_at = excluded.last_studied_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		s.TotalAnswered,
		s.TotalCorrect,
		s.CorrectRate,
		s.TotalStudySeconds,
		nullTime(s.LastStudiedAt),
		s.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save statistics: %w", err)
	}

	return nil
}
