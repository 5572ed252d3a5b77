package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite/repository"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

func newStore(t *testing.T) *repository.Store {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(ctx, db))

	st := repository.NewStore(db)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createQuestion(t *testing.T, st storage.Store, categoryID, yearID int64, number, difficulty int) *entities.Question {
	t.Helper()

	q := entities.NewQuestion(entities.NewQuestionInput{
		Number:        number,
		Text:          "What does CPU stand for?",
		Choices:       []string{"Central Processing Unit", "Control Program Unit", "Core Power Unit", "Compute Path Unit"},
		CorrectAnswer: 1,
		Difficulty:    difficulty,
	}, categoryID, yearID)
	require.NoError(t, st.Questions().Create(context.Background(), q))
	return q
}

func TestStore_CategoriesAndYears(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	c := &entities.Category{Name: "Technology", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Categories().Create(ctx, c))
	assert.NotZero(t, c.ID)

	err := st.Categories().Create(ctx, &entities.Category{Name: "Technology", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	got, err := st.Categories().GetByName(ctx, "Technology")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = st.Categories().GetByName(ctx, "Strategy")
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)

	for _, y := range []*entities.Year{
		{Year: 2023, Season: "Autumn"},
		{Year: 2024, Season: "Spring"},
		{Year: 2024, Season: "Autumn"},
	} {
		y.CreatedAt = time.Now().UTC()
		require.NoError(t, st.Years().Create(ctx, y))
	}
	err = st.Years().Create(ctx, &entities.Year{Year: 2024, Season: "Spring", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	years, err := st.Years().List(ctx)
	require.NoError(t, err)
	require.Len(t, years, 3)
	assert.Equal(t, 2024, years[0].Year)
	assert.Equal(t, 2023, years[2].Year)

	_, err = st.Years().Get(ctx, 2022, "Spring")
	assert.ErrorIs(t, err, storage.ErrYearNotFound)
}

func TestStore_Questions(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	c := &entities.Category{Name: "Technology", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Categories().Create(ctx, c))
	y := &entities.Year{Year: 2024, Season: "Spring", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Years().Create(ctx, y))

	q1 := createQuestion(t, st, c.ID, y.ID, 1, 1)
	q2 := createQuestion(t, st, c.ID, y.ID, 2, 4)
	q3 := createQuestion(t, st, c.ID, y.ID, 3, 2)

	exists, err := st.Questions().Exists(ctx, c.ID, y.ID, 2)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = st.Questions().Exists(ctx, c.ID, y.ID, 9)
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := st.Questions().GetByID(ctx, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Technology", got.CategoryName)
	require.Len(t, got.Choices, 4)
	for i, ch := range got.Choices {
		assert.Equal(t, i+1, ch.Position)
		assert.Equal(t, i == 0, ch.IsCorrect)
	}

	choice, err := st.Questions().GetChoice(ctx, got.Choices[2].ID)
	require.NoError(t, err)
	assert.Equal(t, q1.ID, choice.QuestionID)
	_, err = st.Questions().GetChoice(ctx, 99999)
	assert.ErrorIs(t, err, storage.ErrChoiceNotFound)

	list, err := st.Questions().List(ctx, entities.QuestionFilter{DifficultyMax: 2}, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, q1.ID, list[0].ID)
	assert.Equal(t, q3.ID, list[1].ID)
	assert.Len(t, list[1].Choices, 4)

	list, err = st.Questions().List(ctx, entities.QuestionFilter{YearIDs: []int64{y.ID, y.ID + 100}}, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, q1.ID, list[0].ID)

	require.NoError(t, st.Questions().Deactivate(ctx, q2.ID))
	n, err := st.Questions().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, st.Questions().Deactivate(ctx, 99999), storage.ErrQuestionNotFound)

	_, err = st.Questions().GetByID(ctx, 99999)
	assert.ErrorIs(t, err, storage.ErrQuestionNotFound)
}

func TestStore_AnswersAndFacts(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	tech := &entities.Category{Name: "Technology", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Categories().Create(ctx, tech))
	strat := &entities.Category{Name: "Strategy", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Categories().Create(ctx, strat))
	y := &entities.Year{Year: 2024, Season: "Spring", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Years().Create(ctx, y))

	qt := createQuestion(t, st, tech.ID, y.ID, 1, 2)
	qs := createQuestion(t, st, strat.ID, y.ID, 1, 2)

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	answers := []*entities.UserAnswer{
		entities.NewUserAnswer(qt.ID, &qt.Choices[0], "s1", 10),
		entities.NewUserAnswer(qs.ID, &qs.Choices[1], "s1", 20),
		{QuestionID: qt.ID, SessionID: "s2", LatencySeconds: 5},
	}
	answers[0].AnsweredAt = old
	answers[1].AnsweredAt = recent
	answers[2].AnsweredAt = recent
	for _, a := range answers {
		require.NoError(t, st.Answers().Create(ctx, a))
		assert.NotZero(t, a.ID)
	}

	bySession, err := st.Answers().ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, bySession, 2)
	assert.Equal(t, answers[0].ID, bySession[0].ID)
	assert.True(t, bySession[0].Correct())
	require.NotNil(t, bySession[1].IsCorrect)
	assert.False(t, *bySession[1].IsCorrect)
	assert.True(t, bySession[0].AnsweredAt.Equal(old))

	unanswered, err := st.Answers().ListBySession(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, unanswered, 1)
	assert.Nil(t, unanswered[0].IsCorrect)
	assert.Nil(t, unanswered[0].SelectedChoiceID)

	ok, err := st.Answers().Exists(ctx, "s1", qs.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.Answers().Exists(ctx, "s2", qs.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	facts, err := st.Answers().ListFacts(ctx, storage.AnswerFilter{})
	require.NoError(t, err)
	require.Len(t, facts, 3)
	assert.Equal(t, "Technology", facts[0].CategoryName)
	assert.Equal(t, qt.Text, facts[0].QuestionText)

	facts, err = st.Answers().ListFacts(ctx, storage.AnswerFilter{CategoryID: &strat.ID})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, qs.ID, facts[0].QuestionID)

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	facts, err = st.Answers().ListFacts(ctx, storage.AnswerFilter{Since: &since, CategoryID: &tech.ID})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "s2", facts[0].SessionID)
}

func TestStore_Sessions(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	c := &entities.Category{Name: "Technology", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Categories().Create(ctx, c))

	s := entities.NewStudySession("abc", entities.ModeByCategory, []int64{c.ID}, nil, 10)
	s.StartedAt = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Sessions().Create(ctx, s))

	got, err := st.Sessions().GetBySessionID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, entities.ModeByCategory, got.Mode)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, c.ID, *got.CategoryID)
	assert.Nil(t, got.YearID)
	assert.Nil(t, got.EndedAt)
	assert.True(t, got.StartedAt.Equal(s.StartedAt))

	open, err := st.Sessions().ListOpenBefore(ctx, s.StartedAt.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, open, 1)
	open, err = st.Sessions().ListOpenBefore(ctx, s.StartedAt)
	require.NoError(t, err)
	assert.Empty(t, open)

	ended := s.StartedAt.Add(10 * time.Minute)
	s.Complete(7, ended)
	require.NoError(t, st.Sessions().Close(ctx, s))

	got, err = st.Sessions().GetBySessionID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, entities.SessionCompleted, got.Status)
	assert.Equal(t, 7, got.CorrectCount)
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.Equal(ended))

	open, err = st.Sessions().ListOpenBefore(ctx, ended.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = st.Sessions().GetBySessionID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	missing := entities.NewStudySession("missing", entities.ModeRandom, nil, nil, 1)
	assert.ErrorIs(t, st.Sessions().Close(ctx, missing), storage.ErrSessionNotFound)
}

func TestStore_Statistics(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	_, err := st.Statistics().Get(ctx)
	assert.ErrorIs(t, err, storage.ErrStatisticsNotFound)

	last := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	s := &entities.Statistics{
		TotalAnswered:     4,
		TotalCorrect:      3,
		CorrectRate:       75,
		TotalStudySeconds: 40,
		LastStudiedAt:     &last,
		UpdatedAt:         last,
	}
	require.NoError(t, st.Statistics().Save(ctx, s))

	s.TotalAnswered = 5
	require.NoError(t, st.Statistics().Save(ctx, s))

	got, err := st.Statistics().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalAnswered)
	assert.Equal(t, 75.0, got.CorrectRate)
	require.NotNil(t, got.LastStudiedAt)
	assert.True(t, got.LastStudiedAt.Equal(last))
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	boom := assert.AnError
	err := st.WithinTx(ctx, func(ctx context.Context, tx storage.Store) error {
		c := &entities.Category{Name: "Technology", CreatedAt: time.Now().UTC()}
		if err := tx.Categories().Create(ctx, c); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Categories().GetByName(ctx, "Technology")
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)

	err = st.WithinTx(ctx, func(ctx context.Context, tx storage.Store) error {
		return tx.Categories().Create(ctx, &entities.Category{Name: "Strategy", CreatedAt: time.Now().UTC()})
	})
	require.NoError(t, err)

	categories, err := st.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Strategy", categories[0].Name)
}
