// Package repository implements the storage contracts on top of database/sql
// and the pure-Go SQLite driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// CategoryRepository provides access to exam categories in the database.
type CategoryRepository struct {
	db sqlite.DBTX
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db sqlite.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category and fills its ID.
func (r *CategoryRepository) Create(ctx context.Context, c *entities.Category) error {
	query := `
		INSERT OR IGNORE INTO categories (name, description, created_at)
		VALUES (?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	id, err := insertedID(res)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	c.ID = id

	return nil
}

// GetByName retrieves a category by its unique name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE name = ?
	`

	var c entities.Category
	err := r.db.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

// List returns all categories ordered by ID.
func (r *CategoryRepository) List(ctx context.Context) ([]*entities.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*entities.Category
	for rows.Next() {
		var c entities.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

// insertedID returns the row ID of an INSERT OR IGNORE, or ErrAlreadyExists
// when the row was ignored.
func insertedID(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, storage.ErrAlreadyExists
	}
	return res.LastInsertId()
}
