package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliskhannn/itpass-trainer/internal/infra/postgres"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// Store is the PostgreSQL implementation of storage.Store.
type Store struct {
	pool       *pgxpool.Pool
	transactor *postgres.Transactor

	categories *CategoryRepository
	years      *YearRepository
	questions  *QuestionRepository
	answers    *AnswerRepository
	sessions   *SessionRepository
	statistics *StatisticsRepository
}

// NewStore creates a Store backed by the pool. The store owns the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	s := newStore(pool, pool)
	s.pool = pool
	return s
}

// db runs the queries, begin opens transactions (or savepoints when db is a pgx.Tx).
func newStore(db postgres.DBTX, begin postgres.Beginner) *Store {
	return &Store{
		transactor: postgres.NewTransactor(begin),
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
// Nested calls open a savepoint.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.Store) error) error {
	return s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, newStore(tx, tx))
	})
}

// Close releases the pool. It is a no-op for transaction-bound stores.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
