package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// AnswerRepository provides access to answer events in the database.
type AnswerRepository struct {
	db sqlite.DBTX
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(db sqlite.DBTX) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Create inserts an answer event and fills its ID.
func (r *AnswerRepository) Create(ctx context.Context, a *entities.UserAnswer) error {
	query := `
		INSERT INTO user_answers (
			question_id, selected_choice_id, is_correct,
			answered_at, latency_seconds, session_id
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		a.QuestionID,
		nullInt64(a.SelectedChoiceID),
		nullBool(a.IsCorrect),
		a.AnsweredAt.UTC(),
		a.LatencySeconds,
		a.SessionID,
	)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create answer: %w", err)
	}

	return nil
}

// ListBySession returns the answers of one session in insertion order.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID string) ([]*entities.UserAnswer, error) {
	query := `
		SELECT id, question_id, selected_choice_id, is_correct, answered_at, latency_seconds, session_id
		FROM user_answers
		WHERE session_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []*entities.UserAnswer
	for rows.Next() {
		var (
			a        entities.UserAnswer
			choiceID sql.NullInt64
			correct  sql.NullBool
		)
		err := rows.Scan(
			&a.ID,
			&a.QuestionID,
			&choiceID,
			&correct,
			&a.AnsweredAt,
			&a.LatencySeconds,
			&a.SessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.SelectedChoiceID = int64Ptr(choiceID)
		a.IsCorrect = boolPtr(correct)
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
		WHERE (? IS NULL OR q.category_id = ?)
		  AND (? IS NULL OR a.answered_at >= ?)
		ORDER BY a.id
	`

	category := nullInt64(f.CategoryID)
	since := nullTime(f.Since)

	rows, err := r.db.QueryContext(ctx, query, category, category, since, since)
	if err != nil {
		return nil, fmt.Errorf("list answer facts: %w", err)
	}
	defer rows.Close()

	var facts []entities.AnswerFact
	for rows.Next() {
		var (
			fact     entities.AnswerFact
			choiceID sql.NullInt64
			correct  sql.NullBool
		)
		err := rows.Scan(
			&fact.ID,
			&fact.QuestionID,
			&choiceID,
			&correct,
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
		fact.SelectedChoiceID = int64Ptr(choiceID)
		fact.IsCorrect = boolPtr(correct)
		facts = append(facts, fact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answer facts: %w", err)
	}

	return facts, nil
}

// Exists reports whether the question was already answered in the session.
func (r *AnswerRepository) Exists(ctx context.Context, sessionID string, questionID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_answers WHERE session_id = ? AND question_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, sessionID, questionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check answer existence: %w", err)
	}

	return exists, nil
}
