// Package importer reads question files into records accepted by
// QuestionStore.BulkAddQuestions.
//
// Two formats are supported:
//
//	JSON: {"year": 2024, "season": "Spring", "questions": [{...}, ...]}
//	      or a flat array of records carrying their own year and season
//	CSV:  a header row naming the columns year, season, category,
//	      question_number, text, choice1..choice4 (or choice_a..choice_d),
//	      correct_answer, explanation, difficulty
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported import format")
	ErrInvalidRecord     = errors.New("invalid record")
)

// Record is one question of an import file.
type Record struct {
	Year           int      `json:"year" validate:"required,gt=0"`
	Season         string   `json:"season"`
	Category       string   `json:"category" validate:"required"`
	QuestionNumber int      `json:"question_number" validate:"gte=0"`
	Text           string   `json:"text" validate:"required"`
	Explanation    string   `json:"explanation"`
	Choices        []string `json:"choices" validate:"len=4,dive,required"`
	CorrectAnswer  int      `json:"correct_answer" validate:"min=1,max=4"`
	Difficulty     int      `json:"difficulty" validate:"omitempty,min=1,max=5"`
}

// Input converts the record into a question creation input.
func (r Record) Input() entities.NewQuestionInput {
	return entities.NewQuestionInput{
		Year:          r.Year,
		Season:        r.Season,
		Category:      r.Category,
		Number:        r.QuestionNumber,
		Text:          r.Text,
		Explanation:   r.Explanation,
		Choices:       r.Choices,
		CorrectAnswer: r.CorrectAnswer,
		Difficulty:    r.Difficulty,
	}
}

// Loader reads and validates import files.
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// LoadFile reads the file at path, choosing the format by extension.
func (l *Loader) LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return l.ReadJSON(f)
	case ".csv":
		return l.ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Inputs validates records and converts the valid ones.
// Every invalid record yields one error naming its 1-based position.
func (l *Loader) Inputs(records []Record) ([]entities.NewQuestionInput, []error) {
	inputs := make([]entities.NewQuestionInput, 0, len(records))
	var errs []error

	for i := range records {
		if err := l.validate.Struct(&records[i]); err != nil {
			errs = append(errs, fmt.Errorf("%w %d: %s", ErrInvalidRecord, i+1, describe(err)))
			continue
		}
		inputs = append(inputs, records[i].Input())
	}

	return inputs, errs
}

// describe flattens validation errors into "field rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
