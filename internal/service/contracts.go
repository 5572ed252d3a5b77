package service

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage wraps every failure of the persistence layer so callers can
	// tell infrastructure problems apart from domain outcomes.
	ErrStorage = errors.New("storage error")

	ErrInvalidQuestion      = errors.New("invalid question")
	ErrDuplicateQuestion    = errors.New("question already exists")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrChoiceNotFound       = errors.New("choice not found")
	ErrChoiceMismatch       = errors.New("choice does not belong to the question")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrNoActiveSession      = errors.New("no active session")
	ErrNoCurrentQuestion    = errors.New("no current question")
	ErrAlreadyAnswered      = errors.New("question already answered in this session")
	ErrInvalidArgument      = errors.New("invalid argument")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
