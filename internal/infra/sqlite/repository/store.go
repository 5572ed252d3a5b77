package repository

import (
	"context"
	"database/sql"

	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// Store is the SQLite implementation of storage.Store.
type Store struct {
	db         *sql.DB // nil for transaction-bound stores
	transactor *sqlite.Transactor

	categories *CategoryRepository
	years      *YearRepository
	questions  *QuestionRepository
	answers    *AnswerRepository
	sessions   *SessionRepository
	statistics *StatisticsRepository
}

// NewStore creates a Store backed by db. The store owns db.
func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	s.transactor = sqlite.NewTransactor(db)
	return s
}

func newStore(db sqlite.DBTX) *Store {
	return &Store{
		categories: NewCategoryRepository(db),
		years:      NewYearRepository(db),
		questions:  NewQuestionRepository(db),
		answers:    NewAnswerRepository(db),
		sessions:   NewSessionRepository(db),
		statistics: NewStatisticsRepository(db),
	}
}

func (s *Store) Categories() storage.CategoryRepository { return s.categories }
func (s *Store) Years() storage.YearRepository { return s.years }
func (s *Store) Questions() storage.QuestionRepository { return s.questions }
func (s *Store) Answers() storage.AnswerRepository { return s.answers }
func (s *Store) Sessions() storage.SessionRepository { return s.sessions }
func (s *Store) Statistics() storage.StatisticsRepository { return s.statistics }

// WithinTx runs fn with a store whose repositories share one transaction.
// A store that is already transaction-bound runs fn in its own transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.Store) error) error {
	if s.transactor == nil {
		return fn(ctx, s)
	}
	return s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newStore(tx))
	})
}

// Close closes the database. It is a no-op for transaction-bound stores.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ storage.Store = (*Store)(nil)
