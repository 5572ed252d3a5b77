// Package terminal is the interactive command-line front end of the trainer.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/service"
)

type Handler struct {
	in     *bufio.Scanner
	out    io.Writer
	engine QuizEngine
	stats  StatisticsService
	logger *zap.Logger

	now func() time.Time

	// Lines are read by one goroutine so that a blocked read does not delay cancellation.
	lines      chan string
	readerOnce sync.Once
}

func NewHandler(
	in io.Reader,
	out io.Writer,
	engine QuizEngine,
	stats StatisticsService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		in:     bufio.NewScanner(in),
		out:    out,
		engine: engine,
		stats:  stats,
		logger: logger,
		now:    time.Now,
		lines:  make(chan string),
	}
}

// RunQuiz starts a session and drives it until the user finishes or quits.
// A selection without questions is reported to the user and is not an error.
func (h *Handler) RunQuiz(ctx context.Context, opts service.StartOptions) error {
	if opts.Mode == "" {
		opts.Mode = entities.ModeRandom
	}

	sessionID, questions, err := h.engine.StartSession(ctx, opts)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestionsAvailable) {
			h.println(msgNoQuestions)
			return nil
		}
		return fmt.Errorf("start session: %w", err)
	}

	h.logger.Debug("quiz started", zap.String("session_id", sessionID))
	h.print(formatQuizStart(opts.Mode, len(questions)))

	answered := make(map[int64]bool, len(questions))
	for {
		if ctx.Err() != nil {
			return h.abandon(ctx, nil)
		}

		q := h.engine.CurrentQuestion()
		if q == nil {
			return h.finish(ctx)
		}

		h.print(formatQuestion(q, h.engine.CurrentIndex(), h.engine.QuestionCount(), answered[q.ID]))
		shownAt := h.now()

		line, ok, err := h.readLine(ctx)
		if err != nil {
			// Interrupted: the session is closed, not scored.
			return h.abandon(ctx, nil)
		}
		if !ok {
			// Input closed: keep whatever was answered.
			return h.finish(ctx)
		}

		switch parseCommand(line) {
		case cmdEmpty:
		case cmdHelp:
			h.print(msgHelp)
		case cmdNext:
			if !h.engine.NextQuestion() {
				h.println(msgLastQuestion)
			}
		case cmdPrev:
			if !h.engine.PreviousQuestion() {
				h.println(msgFirstQuestion)
			}
		case cmdQuit:
			return h.abandon(ctx, nil)
		case cmdFinish:
			done, err := h.tryFinish(ctx)
			if err != nil || done {
				return err
			}
		case cmdAnswer:
			if err := h.answer(ctx, q, line, shownAt, answered); err != nil {
				return err
			}
			if len(answered) == len(questions) {
				return h.finish(ctx)
			}
		}
	}
}

func (h *Handler) answer(
	ctx context.Context,
	q *entities.Question,
	line string,
	shownAt time.Time,
	answered map[int64]bool,
) error {
	choice := matchChoice(q, line)
	if choice == nil {
		h.println(msgUnknownInput)
		return nil
	}

	latency := int(h.now().Sub(shownAt).Seconds())
	a, err := h.engine.SubmitAnswer(ctx, choice.ID, latency)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrAlreadyAnswered):
		h.println(msgAlreadyDone)
		return nil
	case errors.Is(err, service.ErrChoiceNotFound), errors.Is(err, service.ErrChoiceMismatch):
		h.println(msgUnknownInput)
		return nil
	default:
		h.logger.Error("failed to submit answer", zap.Int64("question_id", q.ID), zap.Error(err))
		h.println(msgInternalError)
		return err
	}

	answered[q.ID] = true
	h.print(formatFeedback(q, a))
	h.engine.NextQuestion()
	return nil
}

// tryFinish scores the session. It reports false when nothing was answered yet.
func (h *Handler) tryFinish(ctx context.Context) (bool, error) {
	summary, err := h.engine.FinishSession(ctx)
	if err != nil {
		h.println(msgInternalError)
		return false, err
	}
	if summary == nil {
		h.println(msgNoAnswers)
		return false, nil
	}

	h.print(formatSummary(summary))
	return true, nil
}

func (h *Handler) finish(ctx context.Context) error {
	done, err := h.tryFinish(ctx)
	if err != nil || done {
		return err
	}
	return h.abandon(ctx, nil)
}

func (h *Handler) abandon(ctx context.Context, cause error) error {
	// The session must be closed even when ctx was cancelled.
	if err := h.engine.AbandonSession(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	h.println(msgAbandoned)
	return cause
}

// ShowStats prints session, overall and per-category statistics.
// An empty sessionID skips the session block.
func (h *Handler) ShowStats(ctx context.Context, sessionID string, categoryID *int64) error {
	if sessionID != "" {
		st, err := h.stats.SessionStats(ctx, sessionID)
		if err != nil {
			return err
		}
		h.print(formatSessionStats(st))
	}

	overall, err := h.stats.OverallStats(ctx)
	if err != nil {
		return err
	}
	h.print(formatOverallStats(overall))

	byCategory, err := h.stats.CategoryStats(ctx, categoryID)
	if err != nil {
		return err
	}
	h.print(formatCategoryStats(byCategory))

	return nil
}

// ShowWeakPoints prints the questions answered correctly less than threshold percent of the time.
func (h *Handler) ShowWeakPoints(ctx context.Context, threshold float64) error {
	points, err := h.stats.WeakPoints(ctx, threshold)
	if err != nil {
		return err
	}
	h.print(formatWeakPoints(points, threshold))
	return nil
}

// ShowTrend prints the daily correct rate of the last days days.
func (h *Handler) ShowTrend(ctx context.Context, days int) error {
	points, err := h.stats.LearningTrend(ctx, days)
	if err != nil {
		return err
	}
	h.print(formatTrend(points, days))
	return nil
}

// readLine waits for the next input line. ok is false once input is closed;
// err is set when ctx is cancelled first.
func (h *Handler) readLine(ctx context.Context) (string, bool, error) {
	h.readerOnce.Do(func() { go h.readLines() })

	h.print("> ")
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-h.lines:
		return line, ok, nil
	}
}

func (h *Handler) readLines() {
	defer close(h.lines)
	for h.in.Scan() {
		h.lines <- h.in.Text()
	}
	if err := h.in.Err(); err != nil {
		h.logger.Error("failed to read input", zap.Error(err))
	}
}

func (h *Handler) print(s string) {
	if _, err := io.WriteString(h.out, s); err != nil {
		h.logger.Error("failed to write output", zap.Error(err))
	}
}

func (h *Handler) println(s string) {
	h.print(s + "\n")
}
