package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// QuestionRepository provides access to questions and their choices in the database.
type QuestionRepository struct {
	db sqlite.DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(db sqlite.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `
	q.id, q.question_number, q.text, q.explanation, q.category_id, q.year_id,
	q.difficulty, q.is_active, q.created_at, q.updated_at, c.name
`

// Create inserts a question and its choices, filling the generated IDs.
// It should run inside a transaction so that a question never exists without its choices.
func (r *QuestionRepository) Create(ctx context.Context, q *entities.Question) error {
	query := `
		INSERT INTO questions (
			question_number, text, explanation, category_id, year_id,
			difficulty, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		q.Number,
		q.Text,
		q.Explanation,
		q.CategoryID,
		q.YearID,
		q.Difficulty,
		q.IsActive,
		q.CreatedAt.UTC(),
		q.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	if q.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create question: %w", err)
	}

	choiceQuery := `
		INSERT INTO choices (question_id, position, text, is_correct)
		VALUES (?, ?, ?, ?)
	`

	for i := range q.Choices {
		c := &q.Choices[i]
		c.QuestionID = q.ID

		res, err := r.db.ExecContext(ctx, choiceQuery, c.QuestionID, c.Position, c.Text, c.IsCorrect)
		if err != nil {
			return fmt.Errorf("create choice: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("create choice: %w", err)
		}
	}

	return nil
}

// Exists reports whether a question with the given natural key is stored.
func (r *QuestionRepository) Exists(ctx context.Context, categoryID, yearID int64, number int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM questions
			WHERE category_id = ? AND year_id = ? AND question_number = ?
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, categoryID, yearID, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check question existence: %w", err)
	}

	return exists, nil
}

// GetByID retrieves a question with its choices, active or not.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*entities.Question, error) {
	query := `SELECT ` + questionColumns + `
		FROM questions q
		JOIN categories c ON c.id = q.category_id
		WHERE q.id = ?
	`

	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	if err := r.attachChoices(ctx, []*entities.Question{q}); err != nil {
		return nil, err
	}

	return q, nil
}

// List returns active questions matching the filter, ordered by ID.
func (r *QuestionRepository) List(ctx context.Context, f entities.QuestionFilter, limit int) ([]*entities.Question, error) {
	lo, hi := f.Bounds()

	var b strings.Builder
	b.WriteString(`SELECT ` + questionColumns + `
		FROM questions q
		JOIN categories c ON c.id = q.category_id
		WHERE q.is_active = 1 AND q.difficulty BETWEEN ? AND ?`)
	args := []any{lo, hi}

	if len(f.CategoryIDs) > 0 {
		b.WriteString(" AND q.category_id IN (" + placeholders(len(f.CategoryIDs)) + ")")
		args = appendIDs(args, f.CategoryIDs)
	}
	if len(f.YearIDs) > 0 {
		b.WriteString(" AND q.year_id IN (" + placeholders(len(f.YearIDs)) + ")")
		args = appendIDs(args, f.YearIDs)
	}

	b.WriteString(" ORDER BY q.id")
	if limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []*entities.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	rows.Close()

	if err := r.attachChoices(ctx, questions); err != nil {
		return nil, err
	}

	return questions, nil
}

// GetChoice retrieves a single choice by ID.
func (r *QuestionRepository) GetChoice(ctx context.Context, id int64) (*entities.Choice, error) {
	query := `
		SELECT id, question_id, position, text, is_correct
		FROM choices
		WHERE id = ?
	`

	var c entities.Choice
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.QuestionID, &c.Position, &c.Text, &c.IsCorrect)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrChoiceNotFound
		}
		return nil, fmt.Errorf("get choice: %w", err)
	}

	return &c, nil
}

// Deactivate flips the active flag of a question off. Rows are never deleted.
func (r *QuestionRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE questions SET is_active = 0, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate question: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate question: %w", err)
	}
	if n == 0 {
		return storage.ErrQuestionNotFound
	}

	return nil
}

// Count returns the number of active questions.
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE is_active = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (r *QuestionRepository) attachChoices(ctx context.Context, questions []*entities.Question) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(questions))
	byID := make(map[int64]*entities.Question, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
		byID[q.ID] = q
	}

	query := `
		SELECT id, question_id, position, text, is_correct
		FROM choices
		WHERE question_id IN (` + placeholders(len(ids)) + `)
		ORDER BY question_id, position
	`

	rows, err := r.db.QueryContext(ctx, query, appendIDs(nil, ids)...)
	if err != nil {
		return fmt.Errorf("list choices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c entities.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Position, &c.Text, &c.IsCorrect); err != nil {
			return fmt.Errorf("scan choice: %w", err)
		}
		if q, ok := byID[c.QuestionID]; ok {
			q.Choices = append(q.Choices, c)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("list choices: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (*entities.Question, error) {
	var q entities.Question
	err := row.Scan(
		&q.ID,
		&q.Number,
		&q.Text,
		&q.Explanation,
		&q.CategoryID,
		&q.YearID,
		&q.Difficulty,
		&q.IsActive,
		&q.CreatedAt,
		&q.UpdatedAt,
		&q.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appendIDs(args []any, ids []int64) []any {
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
