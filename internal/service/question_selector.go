package service

import (
	"context"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// ReviewStrategy decides how REVIEW sessions pick their questions.
type ReviewStrategy string

const (
	// ReviewRandom draws an unfiltered random sample, like a RANDOM session without filters.
	ReviewRandom ReviewStrategy = "random"
	// ReviewWeakFirst puts questions with the lowest historical correct rate first
	// and tops the selection up with random questions.
	ReviewWeakFirst ReviewStrategy = "weak_first"
)

// QuestionSelector picks the questions of a session according to its mode.
type QuestionSelector struct {
	questions *QuestionStore
	store     storage.Store
	review    ReviewStrategy
}

// NewQuestionSelector creates a new QuestionSelector.
func NewQuestionSelector(questions *QuestionStore, store storage.Store, review ReviewStrategy) *QuestionSelector {
	if review == "" {
		review = ReviewRandom
	}
	return &QuestionSelector{questions: questions, store: store, review: review}
}

// SelectQuestions returns at most total questions without duplicates.
func (s *QuestionSelector) SelectQuestions(
	ctx context.Context,
	mode entities.QuizMode,
	total int,
	f entities.QuestionFilter,
) ([]*entities.Question, error) {
	if total <= 0 {
		return nil, nil
	}

	switch mode {
	case entities.ModeRandom:
		return s.questions.GetRandomQuestions(ctx, total, f)
	case entities.ModeByYear:
		return s.questions.GetRandomQuestions(ctx, total, entities.QuestionFilter{
			YearIDs:       f.YearIDs,
			DifficultyMin: f.DifficultyMin,
			DifficultyMax: f.DifficultyMax,
		})
	case entities.ModeByCategory:
		return s.questions.GetRandomQuestions(ctx, total, entities.QuestionFilter{
			CategoryIDs:   f.CategoryIDs,
			DifficultyMin: f.DifficultyMin,
			DifficultyMax: f.DifficultyMax,
		})
	case entities.ModeReview:
		if s.review == ReviewWeakFirst {
			return s.weakFirst(ctx, total, entities.QuestionFilter{
				CategoryIDs:   f.CategoryIDs,
				DifficultyMin: f.DifficultyMin,
				DifficultyMax: f.DifficultyMax,
			})
		}
		return s.questions.GetRandomQuestions(ctx, total, entities.QuestionFilter{})
	case entities.ModeMockTest:
		return s.questions.GetRandomQuestions(ctx, total, entities.QuestionFilter{})
	default:
		return nil, ErrInvalidArgument
	}
}

// weakFirst orders attempted questions by correct rate ascending and fills the
// remaining slots with a random sample of the rest.
func (s *QuestionSelector) weakFirst(ctx context.Context, total int, f entities.QuestionFilter) ([]*entities.Question, error) {
	pool, err := s.questions.GetQuestions(ctx, f, 0)
	if err != nil {
		return nil, err
	}

	facts, err := s.store.Answers().ListFacts(ctx, storage.AnswerFilter{})
	if err != nil {
		return nil, storageErr("list answer facts", err)
	}

	byID := make(map[int64]*entities.Question, len(pool))
	for _, q := range pool {
		byID[q.ID] = q
	}

	out := make([]*entities.Question, 0, total)
	for _, wp := range questionRates(facts) {
		if len(out) == total {
			return out, nil
		}
		if q, ok := byID[wp.QuestionID]; ok {
			out = append(out, q)
			delete(byID, wp.QuestionID)
		}
	}

	rest := make([]*entities.Question, 0, len(byID))
	for _, q := range pool {
		if _, ok := byID[q.ID]; ok {
			rest = append(rest, q)
		}
	}

	return append(out, sample(rest, total-len(out))...), nil
}
