package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// AnswerRecorder persists answer events graded by the stored choice flag.
type AnswerRecorder struct {
	store  storage.Store
	logger *zap.Logger
}

// NewAnswerRecorder creates a new AnswerRecorder.
func NewAnswerRecorder(store storage.Store, logger *zap.Logger) *AnswerRecorder {
	return &AnswerRecorder{store: store, logger: logger}
}

// RecordAnswer stores one answer. Correctness is copied from the selected
// choice and never re-evaluated.
func (r *AnswerRecorder) RecordAnswer(
	ctx context.Context,
	questionID, choiceID int64,
	sessionID string,
	latencySeconds int,
) (*entities.UserAnswer, error) {
	choice, err := r.store.Questions().GetChoice(ctx, choiceID)
	if err != nil {
		if errors.Is(err, storage.ErrChoiceNotFound) {
			r.logger.Warn("answer rejected: unknown choice",
				zap.Int64("question_id", questionID),
				zap.Int64("choice_id", choiceID),
			)
			return nil, ErrChoiceNotFound
		}
		return nil, storageErr("get choice", err)
	}
	if choice.QuestionID != questionID {
		return nil, ErrChoiceMismatch
	}

	answer := entities.NewUserAnswer(questionID, choice, sessionID, latencySeconds)
	if err := r.store.Answers().Create(ctx, answer); err != nil {
		return nil, storageErr("create answer", err)
	}

	r.logger.Debug("answer recorded",
		zap.String("session_id", sessionID),
		zap.Int64("question_id", questionID),
		zap.Bool("correct", answer.Correct()),
	)

	return answer, nil
}

// GetUserAnswers returns the answers of a session in insertion order.
func (r *AnswerRecorder) GetUserAnswers(ctx context.Context, sessionID string) ([]*entities.UserAnswer, error) {
	answers, err := r.store.Answers().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storageErr("list answers", err)
	}
	return answers, nil
}
