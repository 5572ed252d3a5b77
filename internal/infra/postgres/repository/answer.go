package repository

import (
	"context"
	"fmt"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/postgres"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// AnswerRepository provides access to answer events in the database.
type AnswerRepository struct {
	db postgres.DBTX
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(db postgres.DBTX) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Create inserts an answer event and fills its ID.
func (r *AnswerRepository) Create(ctx context.Context, a *entities.UserAnswer) error {
	query := `
		INSERT INTO user_answers (
			question_id, selected_choice_id, is_correct,
			answered_at, latency_seconds, session_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		a.QuestionID,
		a.SelectedChoiceID,
		a.IsCorrect,
		a.AnsweredAt,
		a.LatencySeconds,
		a.SessionID,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}

	return nil
}

// ListBySession returns the answers of one session in insertion order.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID string) ([]*entities.UserAnswer, error) {
	query := `
		SELECT id, question_id, selected_choice_id, is_correct, answered_at, latency_seconds, session_id
		FROM user_answers
		WHERE session_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []*entities.UserAnswer
	for rows.Next() {
		var a entities.UserAnswer
		err := rows.Scan(
			&a.ID,
			&a.QuestionID,
			&a.SelectedChoiceID,
			&a.IsCorrect,
			&a.AnsweredAt,
			&a.LatencySeconds,
			&a.SessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	return answers, nil
}

// ListFacts returns answers joined with their question and category.
func (r *AnswerRepository) ListFacts(ctx context.Context, f storage.AnswerFilter) ([]entities.AnswerFact, error) {
	query := `
		SELECT a.id, a.question_id, a.selected_choice_id, a.is_correct, a.answered_at,
		       a.latency_seconds, a.session_id, q.text, c.id, c.name
		FROM user_answers a
		JOIN questions q ON q.id = a.question_id
		JOIN categories c ON c.id = q.category_id
		WHERE ($1::bigint IS NULL OR q.category_id = $1)
		  AND ($2::timestamptz IS NULL OR a.answered_at >= $2)
		ORDER BY a.id
	`

	rows, err := r.db.Query(ctx, query, f.CategoryID, f.Since)
	if err != nil {
		return nil, fmt.Errorf("list answer facts: %w", err)
	}
	defer rows.Close()

	var facts []entities.AnswerFact
	for rows.Next() {
		var fact entities.AnswerFact
		err := rows.Scan(
			&fact.ID,
			&fact.QuestionID,
			&fact.SelectedChoiceID,
			&fact.IsCorrect,
			&fact.AnsweredAt,
			&fact.LatencySeconds,
			&fact.SessionID,
			&fact.QuestionText,
			&fact.CategoryID,
			&fact.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan answer fact: %w", err)
		}
		facts = append(facts, fact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answer facts: %w", err)
	}

	return facts, nil
}

// Exists reports whether the question was already answered in the session.
func (r *AnswerRepository) Exists(ctx context.Context, sessionID string, questionID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_answers WHERE session_id = $1 AND question_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, sessionID, questionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check answer existence: %w", err)
	}

	return exists, nil
}
