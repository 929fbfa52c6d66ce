package models

import (
	"time"

	"github.com/lib/pq"
)

// CategoryWeight maps a category name to its configured weight fraction and
// drop-lowest count for a processing run.
type CategoryWeight struct {
	ID        string  `db:"id" json:"id"`
	Category  string  `db:"category" json:"category"`
	Weight    float64 `db:"weight" json:"weight"`
	DropCount int     `db:"drop_count" json:"drop_count"`
}

// ProcessingRun records an executed grade computation with its configuration
// snapshot, so results stay reproducible and auditable.
type ProcessingRun struct {
	ID                  string    `db:"id" json:"id"`
	ScaleID             *string   `db:"scale_id" json:"scale_id,omitempty"`
	ModifiedScaleID     *string   `db:"modified_scale_id" json:"modified_scale_id,omitempty"`
	OnlyGraded          bool      `db:"only_graded" json:"only_graded"`
	AllowPartial        bool      `db:"allow_partial" json:"allow_partial"`
	DetectAnomalies     bool      `db:"detect_anomalies" json:"detect_anomalies"`
	NormalizationFactor float64   `db:"normalization_factor" json:"normalization_factor"`
	StudentCount        int       `db:"student_count" json:"student_count"`
	FlaggedCount        int       `db:"flagged_count" json:"flagged_count"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// RunStudentResult is the persisted per-student outcome of a processing run.
type RunStudentResult struct {
	ID                  string         `db:"id" json:"id"`
	RunID               string         `db:"run_id" json:"run_id"`
	StudentID           string         `db:"student_id" json:"student_id"`
	StudentName         string         `db:"student_name" json:"student_name"`
	RawPercent          float64        `db:"raw_percent" json:"raw_percent"`
	NormalizedPercent   float64        `db:"normalized_percent" json:"normalized_percent"`
	LetterGrade         string         `db:"letter_grade" json:"letter_grade"`
	ModifiedLetterGrade *string        `db:"modified_letter_grade" json:"modified_letter_grade,omitempty"`
	Anomalies           pq.StringArray `db:"anomalies" json:"anomalies"`
}
