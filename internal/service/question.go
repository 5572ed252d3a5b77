package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// QuestionStore owns categories, exam sittings and questions.
type QuestionStore struct {
	store  storage.Store
	logger *zap.Logger
}

// NewQuestionStore creates a new QuestionStore.
func NewQuestionStore(store storage.Store, logger *zap.Logger) *QuestionStore {
	return &QuestionStore{store: store, logger: logger}
}

// ImportReport describes the outcome of a bulk insert.
type ImportReport struct {
	Total    int
	Imported int
	Skipped  int      // duplicates
	Errors   []string // invalid records, one line each
}

// GetOrCreateCategory returns the category with the given name, creating it on first use.
func (s *QuestionStore) GetOrCreateCategory(ctx context.Context, name, description string) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, entities.ErrEmptyCategory)
	}
	return getOrCreateCategory(ctx, s.store, name, description)
}

func getOrCreateCategory(ctx context.Context, st storage.Store, name, description string) (*entities.Category, error) {
	c, err := st.Categories().GetByName(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, storage.ErrCategoryNotFound) {
		return nil, storageErr("get category", err)
	}

	c = &entities.Category{Name: name, Description: description, CreatedAt: time.Now().UTC()}
	if err := st.Categories().Create(ctx, c); err != nil {
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return nil, storageErr("create category", err)
		}
		// Created concurrently since the lookup.
		if c, err = st.Categories().GetByName(ctx, name); err != nil {
			return nil, storageErr("get category", err)
		}
	}

	return c, nil
}

// GetOrCreateYear returns the exam sitting for (year, season), creating it on first use.
func (s *QuestionStore) GetOrCreateYear(ctx context.Context, year int, season string) (*entities.Year, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, entities.ErrInvalidYear)
	}
	return getOrCreateYear(ctx, s.store, year, strings.TrimSpace(season))
}

func getOrCreateYear(ctx context.Context, st storage.Store, year int, season string) (*entities.Year, error) {
	y, err := st.Years().Get(ctx, year, season)
	if err == nil {
		return y, nil
	}
	if !errors.Is(err, storage.ErrYearNotFound) {
		return nil, storageErr("get year", err)
	}

	y = &entities.Year{Year: year, Season: season, CreatedAt: time.Now().UTC()}
	if err := st.Years().Create(ctx, y); err != nil {
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return nil, storageErr("create year", err)
		}
		if y, err = st.Years().Get(ctx, year, season); err != nil {
			return nil, storageErr("get year", err)
		}
	}

	return y, nil
}

// GetCategories returns all categories.
func (s *QuestionStore) GetCategories(ctx context.Context) ([]*entities.Category, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}

// GetYears returns all exam sittings, newest first.
func (s *QuestionStore) GetYears(ctx context.Context) ([]*entities.Year, error) {
	years, err := s.store.Years().List(ctx)
	if err != nil {
		return nil, storageErr("list years", err)
	}
	return years, nil
}

// AddQuestion validates the input and stores the question with its four choices.
// Category and year are created on first reference. A question that already
// exists for the same category, year and number yields ErrDuplicateQuestion.
func (s *QuestionStore) AddQuestion(ctx context.Context, in entities.NewQuestionInput) (*entities.Question, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuestion, err)
	}

	var q *entities.Question
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Store) error {
		category, err := getOrCreateCategory(ctx, tx, in.Category, "")
		if err != nil {
			return err
		}
		year, err := getOrCreateYear(ctx, tx, in.Year, in.Season)
		if err != nil {
			return err
		}

		exists, err := tx.Questions().Exists(ctx, category.ID, year.ID, in.Number)
		if err != nil {
			return storageErr("check question", err)
		}
		if exists {
			return ErrDuplicateQuestion
		}

		q = entities.NewQuestion(in, category.ID, year.ID)
		if err := tx.Questions().Create(ctx, q); err != nil {
			return storageErr("create question", err)
		}
		q.CategoryName = category.Name

		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrStorage) && !errors.Is(err, ErrDuplicateQuestion) {
			err = storageErr("add question", err)
		}
		return nil, err
	}

	return q, nil
}

// BulkAddQuestions adds every record and returns how many were inserted.
// Duplicates and invalid records are logged and skipped; only storage failures abort.
func (s *QuestionStore) BulkAddQuestions(ctx context.Context, items []entities.NewQuestionInput) (int, error) {
	report, err := s.BulkAddQuestionsReport(ctx, items)
	return report.Imported, err
}

// BulkAddQuestionsReport is BulkAddQuestions with a detailed outcome.
// The report is valid up to the failing record when an error is returned.
func (s *QuestionStore) BulkAddQuestionsReport(ctx context.Context, items []entities.NewQuestionInput) (ImportReport, error) {
	report := ImportReport{Total: len(items)}

	for i, in := range items {
		_, err := s.AddQuestion(ctx, in)
		switch {
		case err == nil:
			report.Imported++
		case errors.Is(err, ErrDuplicateQuestion):
			report.Skipped++
			s.logger.Warn("duplicate question skipped",
				zap.Int("year", in.Year),
				zap.String("season", in.Season),
				zap.String("category", in.Category),
				zap.Int("number", in.Number),
			)
		case errors.Is(err, ErrInvalidQuestion):
			report.Errors = append(report.Errors, fmt.Sprintf("record %d: %v", i+1, err))
			s.logger.Warn("invalid question skipped", zap.Int("record", i+1), zap.Error(err))
		default:
			s.logger.Error("bulk insert aborted", zap.Int("record", i+1), zap.Error(err))
			return report, err
		}
	}

	s.logger.Info("bulk insert finished",
		zap.Int("total", report.Total),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
		zap.Int("invalid", len(report.Errors)),
	)

	return report, nil
}

// GetQuestions returns active questions matching the filter, ordered by ID.
// limit <= 0 returns every match.
func (s *QuestionStore) GetQuestions(ctx context.Context, f entities.QuestionFilter, limit int) ([]*entities.Question, error) {
	questions, err := s.store.Questions().List(ctx, f, limit)
	if err != nil {
		return nil, storageErr("list questions", err)
	}
	return questions, nil
}

// GetRandomQuestions draws min(count, available) distinct questions uniformly at random.
// An empty store yields an empty slice.
func (s *QuestionStore) GetRandomQuestions(ctx context.Context, count int, f entities.QuestionFilter) ([]*entities.Question, error) {
	if count <= 0 {
		return []*entities.Question{}, nil
	}

	pool, err := s.GetQuestions(ctx, f, 0)
	if err != nil {
		return nil, err
	}

	return sample(pool, count), nil
}

// GetQuestion returns one question with its choices, active or not.
func (s *QuestionStore) GetQuestion(ctx context.Context, id int64) (*entities.Question, error) {
	q, err := s.store.Questions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrQuestionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, storageErr("get question", err)
	}
	return q, nil
}

// DeactivateQuestion hides a question from future sessions. Its answers stay valid.
func (s *QuestionStore) DeactivateQuestion(ctx context.Context, id int64) error {
	if err := s.store.Questions().Deactivate(ctx, id); err != nil {
		if errors.Is(err, storage.ErrQuestionNotFound) {
			return ErrQuestionNotFound
		}
		return storageErr("deactivate question", err)
	}
	return nil
}

// CountQuestions returns the number of active questions.
func (s *QuestionStore) CountQuestions(ctx context.Context) (int, error) {
	n, err := s.store.Questions().Count(ctx)
	if err != nil {
		return 0, storageErr("count questions", err)
	}
	return n, nil
}

// sample returns up to n elements of pool in random order. pool is shuffled in place.
func sample(pool []*entities.Question, n int) []*entities.Question {
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > n {
		pool = pool[:n]
	}
	if pool == nil {
		pool = []*entities.Question{}
	}
	return pool
}
