package models

import "time"

// GradeScale is an ordered percentage-to-letter threshold table.
type GradeScale struct {
	ID          string            `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Description *string           `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
	Entries     []GradeScaleEntry `json:"entries,omitempty"`
}

// GradeScaleEntry maps a minimum percentage (as a fraction in [0,1]) to a
// letter label.
type GradeScaleEntry struct {
	ID         string  `db:"id" json:"id"`
	ScaleID    string  `db:"scale_id" json:"scale_id"`
	MinPercent float64 `db:"min_percent" json:"min_percent"`
	Letter     string  `db:"letter" json:"letter"`
}
