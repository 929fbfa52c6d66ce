package grading

// Assignment is a gradeable catalog item as seen by the engine. Category is
// empty for uncategorized assignments, which never contribute to a grade.
// MaxPoints nil or zero marks an informational item worth no credit.
type Assignment struct {
	ID        string
	Name      string
	Category  string
	MaxPoints *float64
}

// Score is one student's submission state for one assignment. A nil Score
// pointer means the work was not graded; Excused removes the record from
// both numerator and denominator before any aggregation happens.
type Score struct {
	AssignmentID string
	Score        *float64
	MaxPoints    *float64
	Excused      bool
	Missing      bool
	Late         bool
}

// Student carries roster identity plus the score map keyed by assignment ID.
type Student struct {
	ID     string
	Name   string
	Email  string
	SISID  string
	Scores map[string]Score
}

// CountedAssignment is a single surviving entry in a category result.
type CountedAssignment struct {
	AssignmentID string  `json:"assignment_id"`
	Name         string  `json:"name"`
	Fraction     float64 `json:"fraction"`
	Points       float64 `json:"points"`
}

// DroppedItem records the lowest-scoring assignment removed by a drop rule.
// Only the first dropped entry is retained for reporting even when the drop
// count removes more than one; the average itself excludes every dropped
// entry.
type DroppedItem struct {
	AssignmentID string  `json:"assignment_id"`
	Name         string  `json:"name"`
	Fraction     float64 `json:"fraction"`
	Points       float64 `json:"points"`
}

// CategoryResult is one student's outcome for one weighted category.
type CategoryResult struct {
	Category     string              `json:"category"`
	Items        []CountedAssignment `json:"items"`
	Average      float64             `json:"average"`
	Contribution float64             `json:"contribution"`
	Dropped      *DroppedItem        `json:"dropped,omitempty"`
}

// StudentResult is the complete processed outcome for one student. It is
// immutable once the run finishes.
type StudentResult struct {
	StudentID           string                     `json:"student_id"`
	Name                string                     `json:"name"`
	Email               string                     `json:"email,omitempty"`
	SISID               string                     `json:"sis_id,omitempty"`
	Categories          map[string]*CategoryResult `json:"categories"`
	RawPercent          float64                    `json:"raw_percent"`
	NormalizationFactor float64                    `json:"normalization_factor"`
	NormalizedPercent   float64                    `json:"normalized_percent"`
	LetterGrade         string                     `json:"letter_grade"`
	ModifiedLetterGrade string                     `json:"modified_letter_grade,omitempty"`
	Anomalies           []string                   `json:"anomalies,omitempty"`
}

// CategoryNames returns the student's category names in sorted order.
func (s *StudentResult) CategoryNames() []string {
	return sortedKeys(s.Categories)
}
