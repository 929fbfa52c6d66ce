package grading

import "sort"

// ActiveSet is the immutable per-run decision of which assignments count and
// how the weighted sum is rescaled. It is computed once before the student
// pass and shared read-only by every student, so the per-student computation
// stays pure and parallelizable.
type ActiveSet struct {
	assignments map[string]struct{}
	categories  map[string]struct{}
	factor      float64
}

// Contains reports whether the assignment counts toward grades this run.
func (a *ActiveSet) Contains(assignmentID string) bool {
	_, ok := a.assignments[assignmentID]
	return ok
}

// Factor returns the weight normalization divisor for the run.
func (a *ActiveSet) Factor() float64 {
	return a.factor
}

// Categories returns the active category names in sorted order.
func (a *ActiveSet) Categories() []string {
	names := make([]string, 0, len(a.categories))
	for name := range a.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// computeActiveSet decides, once per run, which assignments are "graded".
//
// In graded-only mode an assignment is active when at least one student holds
// a non-excused, nonzero score for it; the normalization factor is the sum of
// nominal weights of categories containing an active assignment (1.0 when no
// category qualifies). In full-semester mode every assignment is active and
// the factor is the configured total weight, falling back to 1.0.
func computeActiveSet(cfg *Config, assignments []Assignment, students []Student) *ActiveSet {
	active := &ActiveSet{
		assignments: make(map[string]struct{}, len(assignments)),
		categories:  make(map[string]struct{}),
	}

	if !cfg.OnlyGraded() {
		for _, a := range assignments {
			active.assignments[a.ID] = struct{}{}
			if cfg.HasCategory(a.Category) {
				active.categories[a.Category] = struct{}{}
			}
		}
		if cfg.TotalWeight() > 0 {
			active.factor = cfg.TotalWeight()
		} else {
			active.factor = 1.0
		}
		return active
	}

	for _, a := range assignments {
		if hasNonzeroScore(a.ID, students) {
			active.assignments[a.ID] = struct{}{}
			if cfg.HasCategory(a.Category) {
				active.categories[a.Category] = struct{}{}
			}
		}
	}

	total := 0.0
	for category := range active.categories {
		total += cfg.WeightFor(category)
	}
	if total > 0 {
		active.factor = total
	} else {
		active.factor = 1.0
	}
	return active
}

func hasNonzeroScore(assignmentID string, students []Student) bool {
	for _, student := range students {
		record, ok := student.Scores[assignmentID]
		if !ok || record.Excused {
			continue
		}
		if record.Score != nil && *record.Score > 0 {
			return true
		}
	}
	return false
}
