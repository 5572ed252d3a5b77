package entities

import "time"

// Statistics is the cached aggregate over every recorded answer.
// It is rebuilt from raw answers on every session completion and never
// treated as the source of truth.
type Statistics struct {
	TotalAnswered     int
	TotalCorrect      int
	CorrectRate       float64 // percent, 0-100
	TotalStudySeconds int
	LastStudiedAt     *time.Time
	UpdatedAt         time.Time
}

// Rebuild recomputes the aggregate from raw answer records.
func (s *Statistics) Rebuild(answers []AnswerFact, now time.Time) {
	s.TotalAnswered = len(answers)
	s.TotalCorrect = 0
	s.TotalStudySeconds = 0
	s.LastStudiedAt = nil

	for i := range answers {
		a := &answers[i]
		if a.Correct() {
			s.TotalCorrect++
		}
		s.TotalStudySeconds += a.LatencySeconds
		if s.LastStudiedAt == nil || a.AnsweredAt.After(*s.LastStudiedAt) {
			t := a.AnsweredAt
			s.LastStudiedAt = &t
		}
	}

	s.CorrectRate = Rate(s.TotalCorrect, s.TotalAnswered)
	s.UpdatedAt = now
}

// Rate returns correct/total as a percentage, or 0 when nothing was answered.
func Rate(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// SessionSummary is returned when a session is finished.
type SessionSummary struct {
	SessionID        string
	TotalQuestions   int // answered questions, not the planned count
	PlannedQuestions int
	CorrectCount     int
	CorrectRate      float64
	ElapsedSeconds   int
}

// SessionStats classifies every answer of one session.
type SessionStats struct {
	SessionID             string
	Total                 int
	Correct               int
	Incorrect             int
	Unanswered            int // recorded but ungraded
	CorrectRate           float64
	ElapsedSeconds        int
	AvgSecondsPerQuestion float64
}

// CategoryStat aggregates answers of one category.
type CategoryStat struct {
	CategoryName string
	Total        int
	Correct      int
	CorrectRate  float64
}

// OverallStats aggregates every answer ever recorded.
type OverallStats struct {
	TotalAnswered     int
	TotalCorrect      int
	CorrectRate       float64
	TotalStudySeconds int
	StudySessions     int // distinct non-empty session ids
}

// WeakPoint is a question whose historical correct rate is below a threshold.
type WeakPoint struct {
	QuestionID   int64
	TextExcerpt  string
	Category     string
	CorrectRate  float64
	AttemptCount int
	CorrectCount int
}

// TrendPoint is the correct rate of one calendar day.
type TrendPoint struct {
	Date        string // YYYY-MM-DD in the configured location
	CorrectRate float64
	Questions   int
}
