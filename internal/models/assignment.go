package models

import "time"

// Assignment represents a gradeable item in the course catalog. Category and
// MaxPoints are nullable: an assignment without points is informational and
// never graded.
type Assignment struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Category  *string    `db:"category" json:"category,omitempty"`
	MaxPoints *float64   `db:"max_points" json:"max_points,omitempty"`
	DueAt     *time.Time `db:"due_at" json:"due_at,omitempty"`
	Position  int        `db:"position" json:"position"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter limits assignment listings.
type AssignmentFilter struct {
	Category string
	Search   string
}

// ScoreRecord captures one student's submission state for one assignment.
// A missing row means "no submission"; an excused record is removed from both
// numerator and denominator during processing.
type ScoreRecord struct {
	ID           string     `db:"id" json:"id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	Score        *float64   `db:"score" json:"score,omitempty"`
	MaxPoints    *float64   `db:"max_points" json:"max_points,omitempty"`
	Excused      bool       `db:"excused" json:"excused"`
	Missing      bool       `db:"missing" json:"missing"`
	Late         bool       `db:"late" json:"late"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AssignmentStats summarises class performance on a single assignment.
type AssignmentStats struct {
	AssignmentID string   `json:"assignment_id"`
	Name         string   `json:"name"`
	Submitted    int      `json:"submitted"`
	Missing      int      `json:"missing"`
	Excused      int      `json:"excused"`
	Mean         *float64 `json:"mean,omitempty"`
	Median       *float64 `json:"median,omitempty"`
}
