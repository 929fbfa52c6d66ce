package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursegrade/coursegrade-api/internal/models"
)

// ScoreRepository manages persistence for submission scores.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs a ScoreRepository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// ListAll returns every score row, used to assemble a processing run.
func (r *ScoreRepository) ListAll(ctx context.Context) ([]models.ScoreRecord, error) {
	const query = `SELECT id, student_id, assignment_id, score, max_points, excused, missing, late, graded_at, updated_at
        FROM scores ORDER BY student_id ASC, assignment_id ASC`
	var scores []models.ScoreRecord
	if err := r.db.SelectContext(ctx, &scores, query); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

// ListByAssignment returns the scores for a single assignment.
func (r *ScoreRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.ScoreRecord, error) {
	const query = `SELECT id, student_id, assignment_id, score, max_points, excused, missing, late, graded_at, updated_at
        FROM scores WHERE assignment_id = $1 ORDER BY student_id ASC`
	var scores []models.ScoreRecord
	if err := r.db.SelectContext(ctx, &scores, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list scores for assignment: %w", err)
	}
	return scores, nil
}

// ListByStudent returns the scores held by a single student.
func (r *ScoreRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ScoreRecord, error) {
	const query = `SELECT id, student_id, assignment_id, score, max_points, excused, missing, late, graded_at, updated_at
        FROM scores WHERE student_id = $1 ORDER BY assignment_id ASC`
	var scores []models.ScoreRecord
	if err := r.db.SelectContext(ctx, &scores, query, studentID); err != nil {
		return nil, fmt.Errorf("list scores for student: %w", err)
	}
	return scores, nil
}

// Upsert inserts or replaces the score row for a (student, assignment) pair.
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.ScoreRecord) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	score.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO scores (id, student_id, assignment_id, score, max_points, excused, missing, late, graded_at, updated_at)
        VALUES (:id, :student_id, :assignment_id, :score, :max_points, :excused, :missing, :late, :graded_at, :updated_at)
        ON CONFLICT (student_id, assignment_id) DO UPDATE SET
            score = EXCLUDED.score,
            max_points = EXCLUDED.max_points,
            excused = EXCLUDED.excused,
            missing = EXCLUDED.missing,
            late = EXCLUDED.late,
            graded_at = EXCLUDED.graded_at,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// BulkUpsert writes a batch of score rows inside one transaction.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, scores []models.ScoreRecord) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk upsert: %w", err)
	}
	const query = `INSERT INTO scores (id, student_id, assignment_id, score, max_points, excused, missing, late, graded_at, updated_at)
        VALUES (:id, :student_id, :assignment_id, :score, :max_points, :excused, :missing, :late, :graded_at, :updated_at)
        ON CONFLICT (student_id, assignment_id) DO UPDATE SET
            score = EXCLUDED.score,
            max_points = EXCLUDED.max_points,
            excused = EXCLUDED.excused,
            missing = EXCLUDED.missing,
            late = EXCLUDED.late,
            graded_at = EXCLUDED.graded_at,
            updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		scores[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, scores[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk upsert: %w", err)
	}
	return nil
}

// SetExcused toggles the excused flag for a (student, assignment) pair.
func (r *ScoreRepository) SetExcused(ctx context.Context, studentID, assignmentID string, excused bool) error {
	const query = `UPDATE scores SET excused = $3, updated_at = $4 WHERE student_id = $1 AND assignment_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, assignmentID, excused, time.Now().UTC()); err != nil {
		return fmt.Errorf("set excused: %w", err)
	}
	return nil
}

// Delete removes the score row for a (student, assignment) pair.
func (r *ScoreRepository) Delete(ctx context.Context, studentID, assignmentID string) error {
	const query = `DELETE FROM scores WHERE student_id = $1 AND assignment_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, assignmentID); err != nil {
		return fmt.Errorf("delete score: %w", err)
	}
	return nil
}
