package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/postgres"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// QuestionRepository provides access to questions and their choices in the database.
type QuestionRepository struct {
	db postgres.DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a question and its choices, filling the generated IDs.
// It should run inside a transaction so that a question never exists without its choices.
func (r *QuestionRepository) Create(ctx context.Context, q *entities.Question) error {
	query := `
		INSERT INTO questions (
			question_number, text, explanation, category_id, year_id,
			difficulty, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		q.Number,
		q.Text,
		q.Explanation,
		q.CategoryID,
		q.YearID,
		q.Difficulty,
		q.IsActive,
		q.CreatedAt,
		q.UpdatedAt,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}

	choiceQuery := `
		INSERT INTO choices (question_id, position, text, is_correct)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range q.Choices {
		c := &q.Choices[i]
		c.QuestionID = q.ID
		if err := r.db.QueryRow(ctx, choiceQuery, c.QuestionID, c.Position, c.Text, c.IsCorrect).Scan(&c.ID); err != nil {
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
			WHERE category_id = $1 AND year_id = $2 AND question_number = $3
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, categoryID, yearID, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check question existence: %w", err)
	}

	return exists, nil
}

// GetByID retrieves a question with its choices, active or not.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*entities.Question, error) {
	query := `
		SELECT q.id, q.question_number, q.text, q.explanation, q.category_id, q.year_id,
		       q.difficulty, q.is_active, q.created_at, q.updated_at, c.name
		FROM questions q
		JOIN categories c ON c.id = q.category_id
		WHERE q.id = $1
	`

	q, err := scanQuestion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	var lim *int
	if limit > 0 {
		lim = &limit
	}

	query := `
		SELECT q.id, q.question_number, q.text, q.explanation, q.category_id, q.year_id,
		       q.difficulty, q.is_active, q.created_at, q.updated_at, c.name
		FROM questions q
		JOIN categories c ON c.id = q.category_id
		WHERE q.is_active
		  AND q.difficulty BETWEEN $1 AND $2
		  AND ($3::bigint[] IS NULL OR q.category_id = ANY($3))
		  AND ($4::bigint[] IS NULL OR q.year_id = ANY($4))
		ORDER BY q.id
		LIMIT $5
	`

	rows, err := r.db.Query(ctx, query, lo, hi, nilIfEmpty(f.CategoryIDs), nilIfEmpty(f.YearIDs), lim)
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
		WHERE id = $1
	`

	var c entities.Choice
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.QuestionID, &c.Position, &c.Text, &c.IsCorrect)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrChoiceNotFound
		}
		return nil, fmt.Errorf("get choice: %w", err)
	}

	return &c, nil
}

// Deactivate flips the active flag of a question off. Rows are never deleted.
func (r *QuestionRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE questions SET is_active = FALSE, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrQuestionNotFound
	}

	return nil
}

// Count returns the number of active questions.
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE is_active`).Scan(&n); err != nil {
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
		WHERE question_id = ANY($1)
		ORDER BY question_id, position
	`

	rows, err := r.db.Query(ctx, query, ids)
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

func scanQuestion(row pgx.Row) (*entities.Question, error) {
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

func nilIfEmpty(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	return ids
}
