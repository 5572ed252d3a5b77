package entities

import (
	"fmt"
	"strings"
	"time"
)

// QuizMode is the question-selection strategy of a study session.
type QuizMode string

const (
	ModeRandom     QuizMode = "random"      // uniform sample respecting category/year filters
	ModeByYear     QuizMode = "by_year"     // uniform sample restricted to the given years
	ModeByCategory QuizMode = "by_category" // uniform sample restricted to the given categories
	ModeReview     QuizMode = "review"      // questions the user tends to get wrong
	ModeMockTest   QuizMode = "mock_test"   // full-size exam simulation
)

// ParseQuizMode converts user input into a QuizMode.
func ParseQuizMode(s string) (QuizMode, error) {
	switch m := QuizMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRandom, ModeByYear, ModeByCategory, ModeReview, ModeMockTest:
		return m, nil
	case "":
		return ModeRandom, nil
	default:
		return "", fmt.Errorf("unknown quiz mode: %s", s)
	}
}

// SessionStatus is the lifecycle state of a persisted study session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// StudySession represents a single study session.
// It tracks the mode, optional filters, planned size, score and timestamps.
type StudySession struct {
	ID             int64
	SessionID      string        // opaque token shared with answers
	Mode           QuizMode      // selection strategy
	CategoryID     *int64        // first category filter, if any
	YearID         *int64        // first year filter, if any
	TotalQuestions int           // number of questions presented
	CorrectCount   int           // filled in on completion
	Status         SessionStatus // active, completed or abandoned
	StartedAt      time.Time
	EndedAt        *time.Time // nil while the session is open
}

// NewStudySession creates an active session for the given selection.
func NewStudySession(sessionID string, mode QuizMode, categoryIDs, yearIDs []int64, total int) *StudySession {
	s := &StudySession{
		SessionID:      sessionID,
		Mode:           mode,
		TotalQuestions: total,
		Status:         SessionActive,
		StartedAt:      time.Now().UTC(),
	}
	if len(categoryIDs) > 0 {
		id := categoryIDs[0]
		s.CategoryID = &id
	}
	if len(yearIDs) > 0 {
		id := yearIDs[0]
		s.YearID = &id
	}
	return s
}

// Complete marks the session as completed with its final score.
func (s *StudySession) Complete(correct int, now time.Time) {
	s.CorrectCount = correct
	s.Status = SessionCompleted
	s.EndedAt = &now
}

// Abandon closes an unfinished session.
func (s *StudySession) Abandon(now time.Time) {
	s.Status = SessionAbandoned
	s.EndedAt = &now
}

// IsActive reports whether the session is still open.
func (s *StudySession) IsActive() bool {
	return s.Status == SessionActive
}

// UserAnswer is one answer event of a session.
type UserAnswer struct {
	ID               int64
	QuestionID       int64
	SelectedChoiceID *int64 // nil = unanswered
	IsCorrect        *bool  // nil = ungraded
	AnsweredAt       time.Time
	LatencySeconds   int
	SessionID        string
}

// NewUserAnswer creates an answer graded by the stored correctness flag of the selected choice.
func NewUserAnswer(questionID int64, choice *Choice, sessionID string, latencySeconds int) *UserAnswer {
	if latencySeconds < 0 {
		latencySeconds = 0
	}
	a := &UserAnswer{
		QuestionID:     questionID,
		AnsweredAt:     time.Now().UTC(),
		LatencySeconds: latencySeconds,
		SessionID:      sessionID,
	}
	if choice != nil {
		id, correct := choice.ID, choice.IsCorrect
		a.SelectedChoiceID = &id
		a.IsCorrect = &correct
	}
	return a
}

// Correct reports whether the answer was graded as correct.
func (a *UserAnswer) Correct() bool {
	return a.IsCorrect != nil && *a.IsCorrect
}

// AnswerFact is an answer joined with the question and category it belongs to.
// It is the raw material for every statistic.
type AnswerFact struct {
	UserAnswer
	QuestionText string
	CategoryID   int64
	CategoryName string
}
