package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// SessionRepository provides access to study sessions in the database.
type SessionRepository struct {
	db sqlite.DBTX
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db sqlite.DBTX) *SessionRepository {
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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		s.SessionID,
		string(s.Mode),
		nullInt64(s.CategoryID),
		nullInt64(s.YearID),
		s.TotalQuestions,
		s.CorrectCount,
		string(s.Status),
		s.StartedAt.UTC(),
		nullTime(s.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("create study session: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create study session: %w", err)
	}

	return nil
}

// GetBySessionID retrieves a study session by its opaque token.
func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*entities.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE session_id = ?`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		SET correct_count = ?,
		    status = ?,
		    ended_at = ?
		WHERE session_id = ?
	`

	res, err := r.db.ExecContext(ctx, query, s.CorrectCount, string(s.Status), nullTime(s.EndedAt), s.SessionID)
	if err != nil {
		return fmt.Errorf("close study session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close study session: %w", err)
	}
	if n == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

// ListOpenBefore returns active sessions started before t.
func (r *SessionRepository) ListOpenBefore(ctx context.Context, t time.Time) ([]*entities.StudySession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE status = 'active' AND started_at < ?
		ORDER BY started_at
	`

	rows, err := r.db.QueryContext(ctx, query, t.UTC())
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

func scanSession(row scanner) (*entities.StudySession, error) {
	var (
		s          entities.StudySession
		mode       string
		status     string
		categoryID sql.NullInt64
		yearID     sql.NullInt64
		endedAt    sql.NullTime
	)
	err := row.Scan(
		&s.ID,
		&s.SessionID,
		&mode,
		&categoryID,
		&yearID,
		&s.TotalQuestions,
		&s.CorrectCount,
		&status,
		&s.StartedAt,
		&endedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Mode = entities.QuizMode(mode)
	s.Status = entities.SessionStatus(status)
	s.CategoryID = int64Ptr(categoryID)
	s.YearID = int64Ptr(yearID)
	s.EndedAt = timePtr(endedAt)
	return &s, nil
}
