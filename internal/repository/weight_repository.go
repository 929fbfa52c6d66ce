package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursegrade/coursegrade-api/internal/models"
)

// WeightRepository manages the course-level category weight configuration.
type WeightRepository struct {
	db *sqlx.DB
}

// NewWeightRepository constructs a WeightRepository.
func NewWeightRepository(db *sqlx.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// List returns the configured category weights ordered by category name.
func (r *WeightRepository) List(ctx context.Context) ([]models.CategoryWeight, error) {
	const query = `SELECT id, category, weight, drop_count FROM category_weights ORDER BY category ASC`
	var weights []models.CategoryWeight
	if err := r.db.SelectContext(ctx, &weights, query); err != nil {
		return nil, fmt.Errorf("list category weights: %w", err)
	}
	return weights, nil
}

// Replace swaps the entire weight table for a new configuration in one
// transaction, so a run never observes a half-written setup.
func (r *WeightRepository) Replace(ctx context.Context, weights []models.CategoryWeight) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace weights: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM category_weights"); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear category weights: %w", err)
	}
	const query = `INSERT INTO category_weights (id, category, weight, drop_count)
        VALUES (:id, :category, :weight, :drop_count)`
	for i := range weights {
		if weights[i].ID == "" {
			weights[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, weights[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert category weight: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace weights: %w", err)
	}
	return nil
}
