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

// CategoryRepository provides access to exam categories in the database.
type CategoryRepository struct {
	db postgres.DBTX
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db postgres.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category and fills its ID.
func (r *CategoryRepository) Create(ctx context.Context, c *entities.Category) error {
	query := `
		INSERT INTO categories (name, description, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, c.Name, c.Description, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

// GetByName retrieves a category by its unique name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE name = $1
	`

	var c entities.Category
	err := r.db.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	rows, err := r.db.Query(ctx, query)
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
