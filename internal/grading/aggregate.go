package grading

import "sort"

// aggregateCategory applies the drop-lowest rule and computes the category
// average and weighted contribution for one student's entries in a single
// category. Entries arrive in insertion order; ties in the ascending sort
// keep that order (stable). Returns nil when no entry survives, in which
// case the category is absent from the student's results.
func aggregateCategory(category string, entries []CountedAssignment, dropCount int, weight float64) *CategoryResult {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]CountedAssignment, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fraction < sorted[j].Fraction })

	var dropped *DroppedItem
	if dropCount > 0 && len(sorted) > dropCount {
		// Only the first dropped entry is kept for reporting; every
		// dropped entry is removed from the average.
		first := sorted[0]
		dropped = &DroppedItem{
			AssignmentID: first.AssignmentID,
			Name:         first.Name,
			Fraction:     first.Fraction,
			Points:       first.Points,
		}
		sorted = sorted[dropCount:]
	}

	total := 0.0
	for _, entry := range sorted {
		total += entry.Fraction
	}
	average := total / float64(len(sorted))

	return &CategoryResult{
		Category:     category,
		Items:        sorted,
		Average:      average,
		Contribution: average * weight,
		Dropped:      dropped,
	}
}
