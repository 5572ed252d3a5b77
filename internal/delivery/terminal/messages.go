package terminal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

const (
	msgHelp = `Commands:
  1-4, a-d, ア-エ or the choice text   answer the current question
  n / p                                next / previous question
  f                                    finish and show the result
  q                                    quit without scoring
`
	msgNoQuestions   = "No questions match the selected filters. Import questions or change the filters."
	msgUnknownInput  = "Unknown input. Type h for help."
	msgAlreadyDone   = "This question is already answered."
	msgLastQuestion  = "This is the last question. Type f to finish."
	msgFirstQuestion = "This is the first question."
	msgNoAnswers     = "Nothing answered yet, nothing to score."
	msgAbandoned     = "Session closed without scoring."
	msgInternalError = "Something went wrong. Your answers so far are saved."
)

// buildProgressBar renders current/total as a bar of the given length.
func buildProgressBar(current, total, length int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", length) + "]"
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}

	empty := length - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}

func formatQuizMode(mode entities.QuizMode) string {
	switch mode {
	case entities.ModeRandom:
		return "Random"
	case entities.ModeByYear:
		return "By exam year"
	case entities.ModeByCategory:
		return "By category"
	case entities.ModeReview:
		return "Review"
	case entities.ModeMockTest:
		return "Mock exam"
	default:
		return string(mode)
	}
}

func formatQuizStart(mode entities.QuizMode, total int) string {
	return fmt.Sprintf("=== %s: %d questions ===\nType h for help.\n", formatQuizMode(mode), total)
}

func formatQuestion(q *entities.Question, index, total int, answered bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nQuestion %d of %d %s", index+1, total, buildProgressBar(index+1, total, 20))
	if q.CategoryName != "" {
		fmt.Fprintf(&b, "  [%s]", q.CategoryName)
	}
	if answered {
		b.WriteString("  (answered)")
	}
	fmt.Fprintf(&b, "\n\n%s\n\n", q.Text)

	for _, c := range q.Choices {
		label := ""
		if c.Position >= 1 && c.Position <= len(kanaLabels) {
			label = kanaLabels[c.Position-1]
		}
		fmt.Fprintf(&b, "  %d) %s %s\n", c.Position, label, c.Text)
	}

	return b.String()
}

func formatFeedback(q *entities.Question, a *entities.UserAnswer) string {
	var b strings.Builder

	if a.Correct() {
		b.WriteString("✅ Correct!\n")
	} else {
		b.WriteString("❌ Incorrect.")
		if c := q.CorrectChoice(); c != nil {
			fmt.Fprintf(&b, " Correct answer: %d) %s", c.Position, c.Text)
		}
		b.WriteString("\n")
	}
	if q.Explanation != "" {
		fmt.Fprintf(&b, "Explanation: %s\n", q.Explanation)
	}

	return b.String()
}

func formatSummary(s *entities.SessionSummary) string {
	comment := "Keep practising."
	switch {
	case s.CorrectRate >= 90:
		comment = "Excellent!"
	case s.CorrectRate >= 60:
		comment = "Passing level. Keep it up!"
	case s.CorrectRate >= 40:
		comment = "Getting there."
	}

	var b strings.Builder
	b.WriteString("\n=== Result ===\n")
	fmt.Fprintf(&b, "Answered: %d of %d\n", s.TotalQuestions, s.PlannedQuestions)
	fmt.Fprintf(&b, "Correct:  %d (%.1f%%) %s\n", s.CorrectCount, s.CorrectRate, buildProgressBar(s.CorrectCount, s.TotalQuestions, 20))
	fmt.Fprintf(&b, "Time:     %s\n", formatDuration(s.ElapsedSeconds))
	fmt.Fprintf(&b, "%s\n", comment)
	return b.String()
}

func formatSessionStats(s *entities.SessionStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", s.SessionID)
	fmt.Fprintf(&b, "  total %d, correct %d, incorrect %d, unanswered %d\n", s.Total, s.Correct, s.Incorrect, s.Unanswered)
	fmt.Fprintf(&b, "  correct rate %.1f%%, time %s, %.1fs per question\n", s.CorrectRate, formatDuration(s.ElapsedSeconds), s.AvgSecondsPerQuestion)
	return b.String()
}

func formatOverallStats(s *entities.OverallStats) string {
	var b strings.Builder
	b.WriteString("Overall\n")
	fmt.Fprintf(&b, "  answered %d, correct %d (%.1f%%)\n", s.TotalAnswered, s.TotalCorrect, s.CorrectRate)
	fmt.Fprintf(&b, "  study time %s over %d sessions\n", formatDuration(s.TotalStudySeconds), s.StudySessions)
	return b.String()
}

func formatCategoryStats(stats map[string]entities.CategoryStat) string {
	if len(stats) == 0 {
		return "No answers recorded yet.\n"
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("By category\n")
	for _, name := range names {
		st := stats[name]
		fmt.Fprintf(&b, "  %-20s %4d/%-4d %5.1f%% %s\n", name, st.Correct, st.Total, st.CorrectRate, buildProgressBar(st.Correct, st.Total, 10))
	}
	return b.String()
}

func formatWeakPoints(points []entities.WeakPoint, threshold float64) string {
	if len(points) == 0 {
		return fmt.Sprintf("No questions below %.0f%%.\n", threshold)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weak points (below %.0f%%)\n", threshold)
	for i, wp := range points {
		fmt.Fprintf(&b, "%2d. #%d %5.1f%% (%d/%d) [%s] %s\n",
			i+1, wp.QuestionID, wp.CorrectRate, wp.CorrectCount, wp.AttemptCount, wp.Category, wp.TextExcerpt)
	}
	return b.String()
}

func formatTrend(points []entities.TrendPoint, days int) string {
	if len(points) == 0 {
		return fmt.Sprintf("No answers in the last %d days.\n", days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d days\n", days)
	for _, p := range points {
		fmt.Fprintf(&b, "  %s %5.1f%% %s %d questions\n", p.Date, p.CorrectRate, buildProgressBar(int(p.CorrectRate), 100, 20), p.Questions)
	}
	return b.String()
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}
