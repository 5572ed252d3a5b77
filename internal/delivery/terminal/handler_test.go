package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/service"
)

// fakeEngine is an in-memory QuizEngine over a fixed question list.
type fakeEngine struct {
	questions []*entities.Question
	cursor    int
	answers   map[int64]*entities.UserAnswer
	startErr  error
	finished  bool
	abandoned bool
}

func newFakeEngine(questions ...*entities.Question) *fakeEngine {
	return &fakeEngine{questions: questions, answers: make(map[int64]*entities.UserAnswer)}
}

func (e *fakeEngine) StartSession(context.Context, service.StartOptions) (string, []*entities.Question, error) {
	if e.startErr != nil {
		return "", nil, e.startErr
	}
	return "session", e.questions, nil
}

func (e *fakeEngine) CurrentQuestion() *entities.Question {
	if e.cursor >= len(e.questions) {
		return nil
	}
	return e.questions[e.cursor]
}

func (e *fakeEngine) CurrentIndex() int { return e.cursor }
func (e *fakeEngine) QuestionCount() int { return len(e.questions) }

func (e *fakeEngine) NextQuestion() bool {
	if e.cursor >= len(e.questions)-1 {
		return false
	}
	e.cursor++
	return true
}

func (e *fakeEngine) PreviousQuestion() bool {
	if e.cursor == 0 {
		return false
	}
	e.cursor--
	return true
}

func (e *fakeEngine) SubmitAnswer(_ context.Context, choiceID int64, latency int) (*entities.UserAnswer, error) {
	q := e.CurrentQuestion()
	if _, ok := e.answers[q.ID]; ok {
		return nil, service.ErrAlreadyAnswered
	}
	c := q.ChoiceByID(choiceID)
	if c == nil {
		return nil, service.ErrChoiceMismatch
	}
	a := entities.NewUserAnswer(q.ID, c, "session", latency)
	e.answers[q.ID] = a
	return a, nil
}

func (e *fakeEngine) FinishSession(context.Context) (*entities.SessionSummary, error) {
	if len(e.answers) == 0 {
		return nil, nil
	}
	correct := 0
	for _, a := range e.answers {
		if a.Correct() {
			correct++
		}
	}
	e.finished = true
	return &entities.SessionSummary{
		SessionID:        "session",
		TotalQuestions:   len(e.answers),
		PlannedQuestions: len(e.questions),
		CorrectCount:     correct,
		CorrectRate:      entities.Rate(correct, len(e.answers)),
	}, nil
}

func (e *fakeEngine) AbandonSession(context.Context) error {
	e.abandoned = true
	return nil
}

func secondQuestion() *entities.Question {
	return &entities.Question{
		ID:          2,
		Text:        "What does ROI measure?",
		Explanation: "Return on investment.",
		Choices: []entities.Choice{
			{ID: 21, QuestionID: 2, Position: 1, Text: "Return on investment", IsCorrect: true},
			{ID: 22, QuestionID: 2, Position: 2, Text: "Rate of interest"},
			{ID: 23, QuestionID: 2, Position: 3, Text: "Risk of insolvency"},
			{ID: 24, QuestionID: 2, Position: 4, Text: "Range of inventory"},
		},
	}
}

func runQuiz(t *testing.T, engine *fakeEngine, input string) string {
	t.Helper()

	var out bytes.Buffer
	h := NewHandler(strings.NewReader(input), &out, engine, nil, zap.NewNop())
	require.NoError(t, h.RunQuiz(context.Background(), service.StartOptions{}))
	return out.String()
}

func TestHandler_RunQuizAnswersEverything(t *testing.T) {
	engine := newFakeEngine(testQuestion(), secondQuestion())

	out := runQuiz(t, engine, "a\n2\n")

	assert.True(t, engine.finished)
	assert.False(t, engine.abandoned)
	assert.Contains(t, out, "Answered: 2 of 2")
	assert.Contains(t, out, "Correct:  1 (50.0%)")
}

func TestHandler_RunQuizNavigation(t *testing.T) {
	engine := newFakeEngine(testQuestion(), secondQuestion())

	out := runQuiz(t, engine, "p\nh\nn\nn\nxyz\nreturn on investment\nf\n")

	assert.Contains(t, out, msgFirstQuestion)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, msgLastQuestion)
	assert.Contains(t, out, msgUnknownInput)
	assert.True(t, engine.finished)
	assert.Contains(t, out, "Answered: 1 of 2")
}

func TestHandler_RunQuizRejectsSecondAnswer(t *testing.T) {
	engine := newFakeEngine(testQuestion(), secondQuestion())

	out := runQuiz(t, engine, "1\np\n2\nf\n")

	assert.Contains(t, out, msgAlreadyDone)
	assert.True(t, engine.answers[1].Correct())
}

func TestHandler_RunQuizFinishWithoutAnswers(t *testing.T) {
	engine := newFakeEngine(testQuestion())

	out := runQuiz(t, engine, "f\nq\n")

	assert.Contains(t, out, msgNoAnswers)
	assert.Contains(t, out, msgAbandoned)
	assert.True(t, engine.abandoned)
	assert.False(t, engine.finished)
}

func TestHandler_RunQuizEndOfInput(t *testing.T) {
	engine := newFakeEngine(testQuestion(), secondQuestion())

	out := runQuiz(t, engine, "1\n")

	assert.True(t, engine.finished)
	assert.Contains(t, out, "Answered: 1 of 2")
}

func TestHandler_RunQuizInterruptedWhileWaitingForInput(t *testing.T) {
	engine := newFakeEngine(testQuestion(), secondQuestion())

	// Nothing is ever written, so only cancellation can end the read.
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	var out bytes.Buffer
	h := NewHandler(pr, &out, engine, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- h.RunQuiz(ctx, service.StartOptions{}) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunQuiz did not return after cancellation")
	}

	assert.True(t, engine.abandoned)
	assert.False(t, engine.finished)
	assert.Contains(t, out.String(), msgAbandoned)
}

func TestHandler_RunQuizNoQuestions(t *testing.T) {
	engine := newFakeEngine()
	engine.startErr = service.ErrNoQuestionsAvailable

	out := runQuiz(t, engine, "")

	assert.Contains(t, out, msgNoQuestions)
}
