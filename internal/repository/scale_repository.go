package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursegrade/coursegrade-api/internal/models"
)

// ScaleRepository manages persistence for letter grade scales and their
// threshold entries.
type ScaleRepository struct {
	db *sqlx.DB
}

// NewScaleRepository constructs a ScaleRepository.
func NewScaleRepository(db *sqlx.DB) *ScaleRepository {
	return &ScaleRepository{db: db}
}

// List returns all scales without their entries.
func (r *ScaleRepository) List(ctx context.Context) ([]models.GradeScale, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM grade_scales ORDER BY name ASC`
	var scales []models.GradeScale
	if err := r.db.SelectContext(ctx, &scales, query); err != nil {
		return nil, fmt.Errorf("list scales: %w", err)
	}
	return scales, nil
}

// FindByID fetches a scale with its entries ordered by minimum percentage.
func (r *ScaleRepository) FindByID(ctx context.Context, id string) (*models.GradeScale, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM grade_scales WHERE id = $1 LIMIT 1`
	var scale models.GradeScale
	if err := r.db.GetContext(ctx, &scale, query, id); err != nil {
		return nil, err
	}

	const entriesQuery = `SELECT id, scale_id, min_percent, letter FROM grade_scale_entries WHERE scale_id = $1 ORDER BY min_percent ASC`
	if err := r.db.SelectContext(ctx, &scale.Entries, entriesQuery, id); err != nil {
		return nil, fmt.Errorf("load scale entries: %w", err)
	}
	return &scale, nil
}

// ExistsByName checks whether a scale with the name exists, optionally
// excluding an ID.
func (r *ScaleRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT COUNT(*) FROM grade_scales WHERE name = $1"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check scale name: %w", err)
	}
	return count > 0, nil
}

// Create inserts a scale and its entries in one transaction.
func (r *ScaleRepository) Create(ctx context.Context, scale *models.GradeScale) error {
	if scale.ID == "" {
		scale.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if scale.CreatedAt.IsZero() {
		scale.CreatedAt = now
	}
	scale.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create scale: %w", err)
	}
	const query = `INSERT INTO grade_scales (id, name, description, created_at, updated_at)
        VALUES (:id, :name, :description, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create scale: %w", err)
	}
	if err := insertScaleEntries(ctx, tx, scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create scale: %w", err)
	}
	return nil
}

// Update replaces a scale's metadata and entry table in one transaction.
func (r *ScaleRepository) Update(ctx context.Context, scale *models.GradeScale) error {
	scale.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update scale: %w", err)
	}
	const query = `UPDATE grade_scales SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update scale: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grade_scale_entries WHERE scale_id = $1", scale.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear scale entries: %w", err)
	}
	if err := insertScaleEntries(ctx, tx, scale); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update scale: %w", err)
	}
	return nil
}

// Delete removes a scale and its entries.
func (r *ScaleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete scale: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grade_scale_entries WHERE scale_id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete scale entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grade_scales WHERE id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete scale: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete scale: %w", err)
	}
	return nil
}

func insertScaleEntries(ctx context.Context, tx *sqlx.Tx, scale *models.GradeScale) error {
	const query = `INSERT INTO grade_scale_entries (id, scale_id, min_percent, letter)
        VALUES (:id, :scale_id, :min_percent, :letter)`
	for i := range scale.Entries {
		if scale.Entries[i].ID == "" {
			scale.Entries[i].ID = uuid.NewString()
		}
		scale.Entries[i].ScaleID = scale.ID
		if _, err := tx.NamedExecContext(ctx, query, scale.Entries[i]); err != nil {
			return fmt.Errorf("insert scale entry: %w", err)
		}
	}
	return nil
}
