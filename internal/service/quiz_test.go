package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

func TestQuizEngine_StartWithoutQuestions(t *testing.T) {
	f := newFixture(t, ReviewRandom)

	_, _, err := f.engine.StartSession(context.Background(), StartOptions{Mode: entities.ModeRandom})

	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
	assert.Equal(t, StateIdle, f.engine.State())
	assert.Empty(t, f.engine.SessionID())
	assert.Nil(t, f.engine.CurrentQuestion())
}

func TestQuizEngine_FullSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	f.seed(t, 5)

	sessionID, questions, err := f.engine.StartSession(ctx, StartOptions{
		Mode:          entities.ModeRandom,
		QuestionCount: intPtr(3),
	})
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, StateActive, f.engine.State())
	assert.Equal(t, 0, f.engine.CurrentIndex())
	assert.Equal(t, 3, f.engine.QuestionCount())

	// Answer the first two correctly and the last one wrong.
	for i, q := range questions {
		require.Same(t, q, f.engine.CurrentQuestion())

		choice := q.CorrectChoice()
		if i == 2 {
			choice = wrongChoice(q)
		}
		a, err := f.engine.SubmitAnswer(ctx, choice.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, i < 2, a.Correct())

		moved := f.engine.NextQuestion()
		assert.Equal(t, i < 2, moved)
	}

	summary, err := f.engine.FinishSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, sessionID, summary.SessionID)
	assert.Equal(t, 3, summary.TotalQuestions)
	assert.Equal(t, 3, summary.PlannedQuestions)
	assert.Equal(t, 2, summary.CorrectCount)
	assert.InDelta(t, 66.67, summary.CorrectRate, 0.01)
	assert.Equal(t, 30, summary.ElapsedSeconds)
	assert.Equal(t, StateCompleted, f.engine.State())

	session, err := f.store.Sessions().GetBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionCompleted, session.Status)
	assert.Equal(t, 2, session.CorrectCount)
	assert.NotNil(t, session.EndedAt)

	cached, err := f.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.TotalAnswered)
	assert.Equal(t, 2, cached.TotalCorrect)
	assert.Equal(t, 30, cached.TotalStudySeconds)
}

func TestQuizEngine_FirstChoiceOfEveryQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)

	inputs := make([]entities.NewQuestionInput, 0, 5)
	for i := 1; i <= 5; i++ {
		inputs = append(inputs, question("Technology", 2024, "Spring", i))
	}
	added, err := f.questions.BulkAddQuestions(ctx, inputs)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	// Re-importing the same rows adds nothing.
	added, err = f.questions.BulkAddQuestions(ctx, inputs)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	_, questions, err := f.engine.StartSession(ctx, StartOptions{
		Mode:          entities.ModeRandom,
		QuestionCount: intPtr(5),
	})
	require.NoError(t, err)
	require.Len(t, questions, 5)

	wantCorrect := 0
	for _, q := range questions {
		first := q.Choices[0]
		if first.IsCorrect {
			wantCorrect++
		}
		a, err := f.engine.SubmitAnswer(ctx, first.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, first.IsCorrect, a.Correct())
		f.engine.NextQuestion()
	}
	// Only question 4 has the first choice as its answer.
	assert.Equal(t, 1, wantCorrect)

	summary, err := f.engine.FinishSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 5, summary.TotalQuestions)
	assert.Equal(t, wantCorrect, summary.CorrectCount)
}

func TestQuizEngine_CursorBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	f.seed(t, 3)

	_, questions, err := f.engine.StartSession(ctx, StartOptions{QuestionCount: intPtr(3)})
	require.NoError(t, err)

	assert.False(t, f.engine.PreviousQuestion())
	assert.Equal(t, 0, f.engine.CurrentIndex())

	assert.True(t, f.engine.NextQuestion())
	assert.True(t, f.engine.NextQuestion())
	assert.False(t, f.engine.NextQuestion())
	assert.Equal(t, 2, f.engine.CurrentIndex())

	// Reading the current question does not move the cursor.
	assert.Same(t, questions[2], f.engine.CurrentQuestion())
	assert.Same(t, questions[2], f.engine.CurrentQuestion())

	assert.True(t, f.engine.PreviousQuestion())
	assert.Same(t, questions[1], f.engine.CurrentQuestion())
}

func TestQuizEngine_SubmitAnswerErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	f.seed(t, 2)

	_, err := f.engine.SubmitAnswer(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, questions, err := f.engine.StartSession(ctx, StartOptions{QuestionCount: intPtr(2)})
	require.NoError(t, err)

	other := questions[1].Choices[0].ID
	_, err = f.engine.SubmitAnswer(ctx, other, 0)
	assert.ErrorIs(t, err, ErrChoiceMismatch)

	_, err = f.engine.SubmitAnswer(ctx, 424242, 0)
	assert.ErrorIs(t, err, ErrChoiceNotFound)

	_, err = f.engine.SubmitAnswer(ctx, questions[0].Choices[0].ID, 4)
	require.NoError(t, err)
	_, err = f.engine.SubmitAnswer(ctx, questions[0].Choices[1].ID, 4)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	answers, err := f.recorder.GetUserAnswers(ctx, f.engine.SessionID())
	require.NoError(t, err)
	assert.Len(t, answers, 1)
}

func TestQuizEngine_FinishWithoutAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	f.seed(t, 2)

	summary, err := f.engine.FinishSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, summary)

	_, _, err = f.engine.StartSession(ctx, StartOptions{})
	require.NoError(t, err)

	summary, err = f.engine.FinishSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, StateActive, f.engine.State())

	session, err := f.store.Sessions().GetBySessionID(ctx, f.engine.SessionID())
	require.NoError(t, err)
	assert.Equal(t, entities.SessionActive, session.Status)
}

func TestQuizEngine_StartAbandonsActiveSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	f.seed(t, 3)

	first, _, err := f.engine.StartSession(ctx, StartOptions{})
	require.NoError(t, err)
	second, _, err := f.engine.StartSession(ctx, StartOptions{})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	prev, err := f.store.Sessions().GetBySessionID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionAbandoned, prev.Status)
	assert.NotNil(t, prev.EndedAt)

	cur, err := f.store.Sessions().GetBySessionID(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionActive, cur.Status)
	assert.Equal(t, 0, f.engine.CurrentIndex())

	require.NoError(t, f.engine.AbandonSession(ctx))
	assert.Equal(t, StateIdle, f.engine.State())

	cur, err = f.store.Sessions().GetBySessionID(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionAbandoned, cur.Status)
}

func TestQuizEngine_MockTestIgnoresCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	f.seed(t, 120)

	_, questions, err := f.engine.StartSession(ctx, StartOptions{
		Mode:          entities.ModeMockTest,
		QuestionCount: intPtr(5),
	})
	require.NoError(t, err)
	assert.Len(t, questions, MockTestQuestionCount)
}

func TestQuizEngine_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	f.seed(t, 2)

	_, _, err := f.engine.StartSession(ctx, StartOptions{QuestionCount: intPtr(0)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = f.engine.StartSession(ctx, StartOptions{DifficultyMin: 4, DifficultyMax: 2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = f.engine.StartSession(ctx, StartOptions{Mode: "exam"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, StateIdle, f.engine.State())
}

func TestQuizEngine_PersistsFirstFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReviewRandom)
	qs := f.seed(t, 4)

	sessionID, questions, err := f.engine.StartSession(ctx, StartOptions{
		Mode:        entities.ModeByCategory,
		CategoryIDs: []int64{qs[0].CategoryID},
	})
	require.NoError(t, err)
	assert.Len(t, questions, 4)

	session, err := f.store.Sessions().GetBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.ModeByCategory, session.Mode)
	require.NotNil(t, session.CategoryID)
	assert.Equal(t, qs[0].CategoryID, *session.CategoryID)
	assert.Nil(t, session.YearID)
	assert.Equal(t, 4, session.TotalQuestions)
}
