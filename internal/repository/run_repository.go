package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursegrade/coursegrade-api/internal/models"
)

// RunRepository persists processing runs and their per-student results.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create stores a run and its results atomically.
func (r *RunRepository) Create(ctx context.Context, run *models.ProcessingRun, results []models.RunStudentResult) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create run: %w", err)
	}
	const runQuery = `INSERT INTO processing_runs (id, scale_id, modified_scale_id, only_graded, allow_partial, detect_anomalies, normalization_factor, student_count, flagged_count, created_at)
        VALUES (:id, :scale_id, :modified_scale_id, :only_graded, :allow_partial, :detect_anomalies, :normalization_factor, :student_count, :flagged_count, :created_at)`
	if _, err := tx.NamedExecContext(ctx, runQuery, run); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create run: %w", err)
	}

	const resultQuery = `INSERT INTO run_student_results (id, run_id, student_id, student_name, raw_percent, normalized_percent, letter_grade, modified_letter_grade, anomalies)
        VALUES (:id, :run_id, :student_id, :student_name, :raw_percent, :normalized_percent, :letter_grade, :modified_letter_grade, :anomalies)`
	for i := range results {
		if results[i].ID == "" {
			results[i].ID = uuid.NewString()
		}
		results[i].RunID = run.ID
		if _, err := tx.NamedExecContext(ctx, resultQuery, results[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create run result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create run: %w", err)
	}
	return nil
}

// FindByID fetches a run by ID.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*models.ProcessingRun, error) {
	const query = `SELECT id, scale_id, modified_scale_id, only_graded, allow_partial, detect_anomalies, normalization_factor, student_count, flagged_count, created_at
        FROM processing_runs WHERE id = $1 LIMIT 1`
	var run models.ProcessingRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// Latest returns the most recent run, or sql.ErrNoRows when none exists.
func (r *RunRepository) Latest(ctx context.Context) (*models.ProcessingRun, error) {
	const query = `SELECT id, scale_id, modified_scale_id, only_graded, allow_partial, detect_anomalies, normalization_factor, student_count, flagged_count, created_at
        FROM processing_runs ORDER BY created_at DESC LIMIT 1`
	var run models.ProcessingRun
	if err := r.db.GetContext(ctx, &run, query); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first, capped by limit.
func (r *RunRepository) List(ctx context.Context, limit int) ([]models.ProcessingRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, scale_id, modified_scale_id, only_graded, allow_partial, detect_anomalies, normalization_factor, student_count, flagged_count, created_at
        FROM processing_runs ORDER BY created_at DESC LIMIT %d`, limit)
	var runs []models.ProcessingRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ListResults returns the per-student results of a run ordered by name.
func (r *RunRepository) ListResults(ctx context.Context, runID string) ([]models.RunStudentResult, error) {
	const query = `SELECT id, run_id, student_id, student_name, raw_percent, normalized_percent, letter_grade, modified_letter_grade, anomalies
        FROM run_student_results WHERE run_id = $1 ORDER BY student_name ASC`
	var results []models.RunStudentResult
	if err := r.db.SelectContext(ctx, &results, query, runID); err != nil {
		return nil, fmt.Errorf("list run results: %w", err)
	}
	return results, nil
}

// Delete removes a run and its results.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM run_student_results WHERE run_id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete run results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM processing_runs WHERE id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete run: %w", err)
	}
	return nil
}
