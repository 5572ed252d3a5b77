package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	sqliterepo "github.com/aliskhannn/itpass-trainer/internal/infra/sqlite/repository"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

type fixture struct {
	store     storage.Store
	questions *QuestionStore
	recorder  *AnswerRecorder
	stats     *StatisticsService
	selector  *QuestionSelector
	engine    *QuizEngine
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(ctx, db))

	st := sqliterepo.NewStore(db)
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func newFixture(t *testing.T, review ReviewStrategy) *fixture {
	t.Helper()

	logger := zap.NewNop()
	st := newTestStore(t)

	f := &fixture{store: st}
	f.questions = NewQuestionStore(st, logger)
	f.recorder = NewAnswerRecorder(st, logger)
	f.stats = NewStatisticsService(st, time.UTC, DefaultWeakLimit, logger)
	f.selector = NewQuestionSelector(f.questions, st, review)
	f.engine = NewQuizEngine(st, f.selector, f.recorder, f.stats, QuizEngineConfig{}, logger)

	return f
}

func question(category string, year int, season string, number int) entities.NewQuestionInput {
	return entities.NewQuestionInput{
		Year:     year,
		Season:   season,
		Category: category,
		Number:   number,
		Text:     fmt.Sprintf("%s question %d of %d %s", category, number, year, season),
		Choices: []string{
			fmt.Sprintf("option A%d", number),
			fmt.Sprintf("option B%d", number),
			fmt.Sprintf("option C%d", number),
			fmt.Sprintf("option D%d", number),
		},
		CorrectAnswer: number%4 + 1,
		Explanation:   "because",
	}
}

// seed adds n Technology questions of the 2024 Spring exam.
func (f *fixture) seed(t *testing.T, n int) []*entities.Question {
	t.Helper()

	out := make([]*entities.Question, 0, n)
	for i := 1; i <= n; i++ {
		q, err := f.questions.AddQuestion(context.Background(), question("Technology", 2024, "Spring", i))
		require.NoError(t, err)
		out = append(out, q)
	}
	return out
}

func wrongChoice(q *entities.Question) *entities.Choice {
	for i := range q.Choices {
		if !q.Choices[i].IsCorrect {
			return &q.Choices[i]
		}
	}
	return nil
}

func intPtr(n int) *int { return &n }
