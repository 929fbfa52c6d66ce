package grading

import "sort"

// canonicalLetters is the display order for letter grade histograms.
var canonicalLetters = []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F"}

// CohortSummary aggregates normalized percentages across the processed
// population.
type CohortSummary struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Flagged int     `json:"flagged"`
}

// LetterCount is one histogram bucket.
type LetterCount struct {
	Letter string `json:"letter"`
	Count  int    `json:"count"`
}

// SortedByName returns the students ordered by display name. The receiver is
// not mutated; repeated calls are safe.
func (r *Result) SortedByName(ascending bool) []*StudentResult {
	out := make([]*StudentResult, len(r.Students))
	copy(out, r.Students)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Name < out[j].Name
		}
		return out[i].Name > out[j].Name
	})
	return out
}

// SortedByPercent returns the students ordered by normalized percentage.
func (r *Result) SortedByPercent(ascending bool) []*StudentResult {
	out := make([]*StudentResult, len(r.Students))
	copy(out, r.Students)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].NormalizedPercent < out[j].NormalizedPercent
		}
		return out[i].NormalizedPercent > out[j].NormalizedPercent
	})
	return out
}

// Summary computes cohort statistics over the normalized percentages.
func (r *Result) Summary() CohortSummary {
	if len(r.Students) == 0 {
		return CohortSummary{}
	}
	percentages := make([]float64, len(r.Students))
	flagged := 0
	min, max := r.Students[0].NormalizedPercent, r.Students[0].NormalizedPercent
	for i, student := range r.Students {
		percentages[i] = student.NormalizedPercent
		if student.NormalizedPercent < min {
			min = student.NormalizedPercent
		}
		if student.NormalizedPercent > max {
			max = student.NormalizedPercent
		}
		if len(student.Anomalies) > 0 {
			flagged++
		}
	}
	return CohortSummary{
		Count:   len(percentages),
		Mean:    Mean(percentages),
		Median:  Median(percentages),
		StdDev:  SampleStdDev(percentages),
		Min:     min,
		Max:     max,
		Flagged: flagged,
	}
}

// LetterHistogram counts students per letter grade, emitted in canonical
// order (A+ down to F) with any nonstandard letters appended alphabetically.
// Buckets with zero students are omitted.
func (r *Result) LetterHistogram() []LetterCount {
	counts := make(map[string]int)
	for _, student := range r.Students {
		counts[student.LetterGrade]++
	}

	histogram := make([]LetterCount, 0, len(counts))
	seen := make(map[string]struct{}, len(canonicalLetters))
	for _, letter := range canonicalLetters {
		seen[letter] = struct{}{}
		if count := counts[letter]; count > 0 {
			histogram = append(histogram, LetterCount{Letter: letter, Count: count})
		}
	}

	var extras []string
	for letter := range counts {
		if _, ok := seen[letter]; !ok {
			extras = append(extras, letter)
		}
	}
	sort.Strings(extras)
	for _, letter := range extras {
		histogram = append(histogram, LetterCount{Letter: letter, Count: counts[letter]})
	}
	return histogram
}

// Flagged returns the students carrying at least one anomaly, ordered by
// name ascending.
func (r *Result) Flagged() []*StudentResult {
	var flagged []*StudentResult
	for _, student := range r.SortedByName(true) {
		if len(student.Anomalies) > 0 {
			flagged = append(flagged, student)
		}
	}
	return flagged
}
