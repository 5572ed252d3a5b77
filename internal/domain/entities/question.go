package entities

import (
	"errors"
	"strings"
	"time"
)

const (
	// ChoicesPerQuestion is the number of options every exam question carries.
	ChoicesPerQuestion = 4

	MinDifficulty     = 1
	MaxDifficulty     = 5
	DefaultDifficulty = 2
)

var (
	ErrEmptyQuestionText   = errors.New("question text cannot be empty")
	ErrInvalidChoiceCount  = errors.New("question must have exactly 4 choices")
	ErrInvalidCorrectIndex = errors.New("correct answer must point at one of the choices")
	ErrInvalidDifficulty   = errors.New("difficulty must be between 1 and 5")
	ErrEmptyChoiceText     = errors.New("choice text cannot be empty")
	ErrEmptyCategory       = errors.New("category name cannot be empty")
	ErrInvalidYear         = errors.New("exam year must be positive")
)

// Question is a single multiple-choice exam question.
// Questions are never physically deleted: IsActive is flipped instead so that
// historical answers keep pointing at an existing row.
type Question struct {
	ID          int64
	Number      int // question number within its exam sitting
	Text        string
	Explanation string
	CategoryID  int64
	YearID      int64
	Difficulty  int // 1-5
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	CategoryName string // read-only, filled by joins
	Choices      []Choice
}

// Choice is one answer option of a question.
type Choice struct {
	ID         int64
	QuestionID int64
	Position   int // 1..4
	Text       string
	IsCorrect  bool
}

// CorrectChoice returns the choice flagged as correct, or nil.
func (q *Question) CorrectChoice() *Choice {
	for i := range q.Choices {
		if q.Choices[i].IsCorrect {
			return &q.Choices[i]
		}
	}
	return nil
}

// ChoiceByID returns the choice with the given ID, or nil if it does not belong to q.
func (q *Question) ChoiceByID(id int64) *Choice {
	for i := range q.Choices {
		if q.Choices[i].ID == id {
			return &q.Choices[i]
		}
	}
	return nil
}

// Excerpt returns at most n runes of the question text.
func (q *Question) Excerpt(n int) string {
	r := []rune(q.Text)
	if len(r) <= n {
		return q.Text
	}
	return string(r[:n])
}

// NewQuestionInput is everything needed to create a question together with its choices.
// Category and exam sitting are referenced by natural key and resolved by the store.
type NewQuestionInput struct {
	Year          int
	Season        string
	Category      string
	Number        int
	Text          string
	Explanation   string
	Choices       []string
	CorrectAnswer int // 1-based position of the correct choice
	Difficulty    int // 0 means DefaultDifficulty
}

// Validate normalizes the input and checks that exactly one correct choice can be derived from it.
func (in *NewQuestionInput) Validate() error {
	in.Text = strings.TrimSpace(in.Text)
	in.Category = strings.TrimSpace(in.Category)
	in.Season = strings.TrimSpace(in.Season)

	if in.Text == "" {
		return ErrEmptyQuestionText
	}
	if in.Category == "" {
		return ErrEmptyCategory
	}
	if in.Year <= 0 {
		return ErrInvalidYear
	}
	if len(in.Choices) != ChoicesPerQuestion {
		return ErrInvalidChoiceCount
	}
	for _, c := range in.Choices {
		if strings.TrimSpace(c) == "" {
			return ErrEmptyChoiceText
		}
	}
	if in.CorrectAnswer < 1 || in.CorrectAnswer > len(in.Choices) {
		return ErrInvalidCorrectIndex
	}

	if in.Difficulty == 0 {
		in.Difficulty = DefaultDifficulty
	}
	if in.Difficulty < MinDifficulty || in.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}

	return nil
}

// NewQuestion builds a question for the resolved category and year.
// Exactly the choice at in.CorrectAnswer is flagged as correct.
func NewQuestion(in NewQuestionInput, categoryID, yearID int64) *Question {
	now := time.Now().UTC()
	q := &Question{
		Number:      in.Number,
		Text:        in.Text,
		Explanation: in.Explanation,
		CategoryID:  categoryID,
		YearID:      yearID,
		Difficulty:  in.Difficulty,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		Choices:     make([]Choice, 0, len(in.Choices)),
	}

	for i, text := range in.Choices {
		pos := i + 1
		q.Choices = append(q.Choices, Choice{
			Position:  pos,
			Text:      strings.TrimSpace(text),
			IsCorrect: pos == in.CorrectAnswer,
		})
	}

	return q
}

// QuestionFilter narrows question retrieval. Empty slices mean "no filter".
type QuestionFilter struct {
	CategoryIDs   []int64
	YearIDs       []int64
	DifficultyMin int // 0 means MinDifficulty
	DifficultyMax int // 0 means MaxDifficulty
}

// Bounds returns the effective difficulty range of the filter.
func (f QuestionFilter) Bounds() (int, int) {
	lo, hi := f.DifficultyMin, f.DifficultyMax
	if lo <= 0 {
		lo = MinDifficulty
	}
	if hi <= 0 {
		hi = MaxDifficulty
	}
	return lo, hi
}
