package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/postgres"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// SessionRepository provides access to study sessions in the database.
type SessionRepository struct {
	db postgres.DBTX
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db postgres.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, session_id, mode, category_id, year_id, total_questions,
	correct_count, status, started_at, ended_at
`

// Create inserts a study session and fills its ID.
func (r *SessionRepository) Create(ctx context.Context, s *entities.StudySession) error {
	query := `
		INSERT INTO study_sessions (
			session_id, mode, category_id, year_id, total_questions,
			correct_count, status, started_at, ended_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		s.SessionID,
		string(s.Mode),
		s.CategoryID,
		s.YearID,
		s.TotalQuestions,
		s.CorrectCount,
		string(s.Status),
		s.StartedAt,
		s.EndedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("create study session: %w", err)
	}

	return nil
}

// GetBySessionID retrieves a study session by its opaque token.
func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*entities.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE session_id = $1`

	s, err := scanSession(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get study session: %w", err)
	}

	return s, nil
}

// Close writes the final score, status and end timestamp.
func (r *SessionRepository) Close(ctx context.Context, s *entities.StudySession) error {
	query := `
		UPDATE study_sessions
		SET correct_count = $1,
		    status = $2,
		    ended_at = $3
		WHERE session_id = $4
	`

	tag, err := r.db.Exec(ctx, query, s.CorrectCount, string(s.Status), s.EndedAt, s.SessionID)
	if err != nil {
		return fmt.Errorf("close study session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

// ListOpenBefore returns active sessions started before t.
func (r *SessionRepository) ListOpenBefore(ctx context.Context, t time.Time) ([]*entities.StudySession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE status = 'active' AND started_at < $1
		ORDER BY started_at
	`

	rows, err := r.db.Query(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entities.StudySession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan study session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(row pgx.Row) (*entities.StudySession, error) {
	var (
		s      entities.StudySession
		mode   string
		status string
	)
	err := row.Scan(
		&s.ID,
		&s.SessionID,
		&mode,
		&s.CategoryID,
		&s.YearID,
		&s.TotalQuestions,
		&s.CorrectCount,
		&status,
		&s.StartedAt,
		&s.EndedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Mode = entities.QuizMode(mode)
	s.Status = entities.SessionStatus(status)
	return &s, nil
}
