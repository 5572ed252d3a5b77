package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

const (
	DefaultQuestionCount  = 10
	MockTestQuestionCount = 100
)

// EngineState is the lifecycle state of a QuizEngine.
type EngineState int

const (
	StateIdle EngineState = iota
	StateActive
	StateCompleted
)

func (s EngineState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// QuizEngineConfig holds the session size defaults.
type QuizEngineConfig struct {
	DefaultQuestionCount  int // interactive modes
	MockTestQuestionCount int // always used by mock tests
}

// StartOptions describes a new session. A nil QuestionCount uses the mode default.
type StartOptions struct {
	Mode          entities.QuizMode
	QuestionCount *int
	CategoryIDs   []int64
	YearIDs       []int64
	DifficultyMin int // 0 means 1
	DifficultyMax int // 0 means 5
}

// QuizEngine drives one study session at a time: selection, navigation,
// answering and scoring. It is safe for concurrent use.
type QuizEngine struct {
	store    storage.Store
	selector *QuestionSelector
	recorder *AnswerRecorder
	stats    *StatisticsService
	cfg      QuizEngineConfig
	logger   *zap.Logger

	now   func() time.Time
	newID func() string

	mu        sync.Mutex
	state     EngineState
	session   *entities.StudySession
	questions []*entities.Question
	cursor    int
}

// NewQuizEngine creates an idle QuizEngine.
func NewQuizEngine(
	store storage.Store,
	selector *QuestionSelector,
	recorder *AnswerRecorder,
	stats *StatisticsService,
	cfg QuizEngineConfig,
	logger *zap.Logger,
) *QuizEngine {
	if cfg.DefaultQuestionCount <= 0 {
		cfg.DefaultQuestionCount = DefaultQuestionCount
	}
	if cfg.MockTestQuestionCount <= 0 {
		cfg.MockTestQuestionCount = MockTestQuestionCount
	}
	return &QuizEngine{
		store:    store,
		selector: selector,
		recorder: recorder,
		stats:    stats,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// StartSession selects the questions of a new session and persists it.
// An active session is closed as abandoned first. When nothing matches the
// filters ErrNoQuestionsAvailable is returned and the engine keeps its state.
func (e *QuizEngine) StartSession(ctx context.Context, opts StartOptions) (string, []*entities.Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := opts.Mode
	if mode == "" {
		mode = entities.ModeRandom
	}

	count, err := e.resolveCount(mode, opts.QuestionCount)
	if err != nil {
		return "", nil, err
	}

	filter := entities.QuestionFilter{
		CategoryIDs:   opts.CategoryIDs,
		YearIDs:       opts.YearIDs,
		DifficultyMin: opts.DifficultyMin,
		DifficultyMax: opts.DifficultyMax,
	}
	if lo, hi := filter.Bounds(); lo > hi || lo < entities.MinDifficulty || hi > entities.MaxDifficulty {
		return "", nil, ErrInvalidArgument
	}

	questions, err := e.selector.SelectQuestions(ctx, mode, count, filter)
	if err != nil {
		return "", nil, err
	}
	if len(questions) == 0 {
		return "", nil, ErrNoQuestionsAvailable
	}

	session := entities.NewStudySession(e.newID(), mode, opts.CategoryIDs, opts.YearIDs, len(questions))

	err = e.store.WithinTx(ctx, func(ctx context.Context, tx storage.Store) error {
		if err := e.abandonLocked(ctx, tx); err != nil {
			return err
		}
		if err := tx.Sessions().Create(ctx, session); err != nil {
			return storageErr("create study session", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	e.session = session
	e.questions = questions
	e.cursor = 0
	e.state = StateActive

	e.logger.Info("session started",
		zap.String("session_id", session.SessionID),
		zap.String("mode", string(mode)),
		zap.Int("questions", len(questions)),
	)

	out := make([]*entities.Question, len(questions))
	copy(out, questions)
	return session.SessionID, out, nil
}

func (e *QuizEngine) resolveCount(mode entities.QuizMode, requested *int) (int, error) {
	if mode == entities.ModeMockTest {
		return e.cfg.MockTestQuestionCount, nil
	}
	if requested == nil {
		return e.cfg.DefaultQuestionCount, nil
	}
	if *requested <= 0 {
		return 0, ErrInvalidArgument
	}
	return *requested, nil
}

// abandonLocked closes the active session, if any, as abandoned using tx.
func (e *QuizEngine) abandonLocked(ctx context.Context, tx storage.Store) error {
	if e.state != StateActive || e.session == nil {
		return nil
	}

	prev := *e.session
	prev.Abandon(e.now().UTC())
	if err := tx.Sessions().Close(ctx, &prev); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return storageErr("abandon study session", err)
	}

	e.logger.Info("session abandoned", zap.String("session_id", prev.SessionID))
	return nil
}

// AbandonSession closes the active session without scoring it.
// It is a no-op when no session is active.
func (e *QuizEngine) AbandonSession(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return nil
	}

	if err := e.abandonLocked(ctx, e.store); err != nil {
		return err
	}

	e.state = StateIdle
	e.session = nil
	e.questions = nil
	e.cursor = 0
	return nil
}

// CurrentQuestion returns the question at the cursor, or nil.
func (e *QuizEngine) CurrentQuestion() *entities.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentLocked()
}

func (e *QuizEngine) currentLocked() *entities.Question {
	if e.cursor < 0 || e.cursor >= len(e.questions) {
		return nil
	}
	return e.questions[e.cursor]
}

// CurrentIndex returns the zero-based cursor position.
func (e *QuizEngine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// QuestionCount returns the number of questions in the session.
func (e *QuizEngine) QuestionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.questions)
}

// NextQuestion moves the cursor forward unless it is on the last question.
func (e *QuizEngine) NextQuestion() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor >= len(e.questions)-1 {
		return false
	}
	e.cursor++
	return true
}

// PreviousQuestion moves the cursor back unless it is on the first question.
func (e *QuizEngine) PreviousQuestion() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor <= 0 {
		return false
	}
	e.cursor--
	return true
}

// SessionID returns the ID of the current session, or "" when idle.
func (e *QuizEngine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return ""
	}
	return e.session.SessionID
}

// State returns the lifecycle state of the engine.
func (e *QuizEngine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SubmitAnswer records choiceID as the answer to the current question.
// Each question accepts one answer per session.
func (e *QuizEngine) SubmitAnswer(ctx context.Context, choiceID int64, latencySeconds int) (*entities.UserAnswer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive || e.session == nil {
		return nil, ErrNoActiveSession
	}
	q := e.currentLocked()
	if q == nil {
		return nil, ErrNoCurrentQuestion
	}

	answered, err := e.store.Answers().Exists(ctx, e.session.SessionID, q.ID)
	if err != nil {
		return nil, storageErr("check answer", err)
	}
	if answered {
		return nil, ErrAlreadyAnswered
	}

	return e.recorder.RecordAnswer(ctx, q.ID, choiceID, e.session.SessionID, latencySeconds)
}

// FinishSession scores the active session, completes it and refreshes the
// cached statistics in one transaction. It returns nil without error when no
// session is active or nothing was answered; the session then stays active.
func (e *QuizEngine) FinishSession(ctx context.Context) (*entities.SessionSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive || e.session == nil {
		return nil, nil
	}

	var summary *entities.SessionSummary
	completed := *e.session

	err := e.store.WithinTx(ctx, func(ctx context.Context, tx storage.Store) error {
		answers, err := tx.Answers().ListBySession(ctx, completed.SessionID)
		if err != nil {
			return storageErr("list answers", err)
		}
		if len(answers) == 0 {
			return nil
		}

		correct, elapsed := 0, 0
		for _, a := range answers {
			if a.Correct() {
				correct++
			}
			elapsed += a.LatencySeconds
		}

		completed.Complete(correct, e.now().UTC())
		if err := tx.Sessions().Close(ctx, &completed); err != nil {
			return storageErr("complete study session", err)
		}

		if _, err := e.stats.RefreshStatistics(ctx, tx); err != nil {
			return err
		}

		summary = &entities.SessionSummary{
			SessionID:        completed.SessionID,
			TotalQuestions:   len(answers),
			PlannedQuestions: completed.TotalQuestions,
			CorrectCount:     correct,
			CorrectRate:      entities.Rate(correct, len(answers)),
			ElapsedSeconds:   elapsed,
		}
		return nil
	})
	if err != nil {
		e.logger.Error("failed to finish session",
			zap.String("session_id", completed.SessionID),
			zap.Error(err),
		)
		return nil, err
	}
	if summary == nil {
		return nil, nil
	}

	e.session = &completed
	e.state = StateCompleted

	e.logger.Info("session finished",
		zap.String("session_id", summary.SessionID),
		zap.Int("answered", summary.TotalQuestions),
		zap.Int("correct", summary.CorrectCount),
	)

	return summary, nil
}
