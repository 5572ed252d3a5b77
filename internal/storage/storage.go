// Package storage declares the persistence contracts shared by the SQLite and
// PostgreSQL backends.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrYearNotFound       = errors.New("year not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrChoiceNotFound     = errors.New("choice not found")
	ErrSessionNotFound    = errors.New("study session not found")
	ErrStatisticsNotFound = errors.New("statistics not found")
	ErrAlreadyExists      = errors.New("already exists")
)

// CategoryRepository persists exam categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *entities.Category) error
	GetByName(ctx context.Context, name string) (*entities.Category, error)
	List(ctx context.Context) ([]*entities.Category, error)
}

// YearRepository persists exam sittings.
type YearRepository interface {
	Create(ctx context.Context, y *entities.Year) error
	Get(ctx context.Context, year int, season string) (*entities.Year, error)
	List(ctx context.Context) ([]*entities.Year, error)
}

// QuestionRepository persists questions together with their choices.
type QuestionRepository interface {
	Create(ctx context.Context, q *entities.Question) error
	Exists(ctx context.Context, categoryID, yearID int64, number int) (bool, error)
	GetByID(ctx context.Context, id int64) (*entities.Question, error)
	// List returns active questions ordered by ID. limit <= 0 means no limit.
	List(ctx context.Context, f entities.QuestionFilter, limit int) ([]*entities.Question, error)
	GetChoice(ctx context.Context, id int64) (*entities.Choice, error)
	Deactivate(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// AnswerFilter narrows ListFacts. Nil fields mean "no filter".
type AnswerFilter struct {
	CategoryID *int64
	Since      *time.Time
}

// AnswerRepository persists answer events.
type AnswerRepository interface {
	Create(ctx context.Context, a *entities.UserAnswer) error
	// ListBySession returns the answers of one session in insertion order.
	ListBySession(ctx context.Context, sessionID string) ([]*entities.UserAnswer, error)
	// ListFacts returns answers joined with their question and category in insertion order.
	ListFacts(ctx context.Context, f AnswerFilter) ([]entities.AnswerFact, error)
	Exists(ctx context.Context, sessionID string, questionID int64) (bool, error)
}

// SessionRepository persists study sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *entities.StudySession) error
	GetBySessionID(ctx context.Context, sessionID string) (*entities.StudySession, error)
	// Close writes the score, status and end timestamp of a session.
	Close(ctx context.Context, s *entities.StudySession) error
	// ListOpenBefore returns active sessions started before t.
	ListOpenBefore(ctx context.Context, t time.Time) ([]*entities.StudySession, error)
}

// StatisticsRepository persists the singleton statistics row.
type StatisticsRepository interface {
	Get(ctx context.Context) (*entities.Statistics, error)
	Save(ctx context.Context, s *entities.Statistics) error
}

// Store groups the repositories of one backend.
// Repositories returned by the store passed to WithinTx share one transaction.
type Store interface {
	Categories() CategoryRepository
	Years() YearRepository
	Questions() QuestionRepository
	Answers() AnswerRepository
	Sessions() SessionRepository
	Statistics() StatisticsRepository

	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Close() error
}
