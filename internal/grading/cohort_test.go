package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cohortResult() *Result {
	return &Result{
		Students: []*StudentResult{
			{StudentID: "s1", Name: "Carol", NormalizedPercent: 0.91, LetterGrade: "B+"},
			{StudentID: "s2", Name: "Alice", NormalizedPercent: 0.75, LetterGrade: "C-", Anomalies: []string{"finding"}},
			{StudentID: "s3", Name: "Bob", NormalizedPercent: 0.91, LetterGrade: "B+"},
			{StudentID: "s4", Name: "Dave", NormalizedPercent: 0.55, LetterGrade: "F"},
		},
	}
}

func TestSortedByName(t *testing.T) {
	result := cohortResult()

	ascending := result.SortedByName(true)
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, names(ascending))

	descending := result.SortedByName(false)
	assert.Equal(t, []string{"Dave", "Carol", "Bob", "Alice"}, names(descending))

	// The receiver keeps its original order.
	assert.Equal(t, "Carol", result.Students[0].Name)
}

func TestSortedByPercentStable(t *testing.T) {
	result := cohortResult()

	descending := result.SortedByPercent(false)
	// Carol and Bob tie at 0.91; input order breaks the tie.
	assert.Equal(t, []string{"Carol", "Bob", "Alice", "Dave"}, names(descending))

	ascending := result.SortedByPercent(true)
	assert.Equal(t, "Dave", ascending[0].Name)
}

func TestSummary(t *testing.T) {
	summary := cohortResult().Summary()

	assert.Equal(t, 4, summary.Count)
	assert.InDelta(t, 0.78, summary.Mean, 1e-9)
	assert.InDelta(t, 0.83, summary.Median, 1e-9)
	assert.InDelta(t, 0.55, summary.Min, 1e-9)
	assert.InDelta(t, 0.91, summary.Max, 1e-9)
	assert.Equal(t, 1, summary.Flagged)
	assert.Greater(t, summary.StdDev, 0.0)
}

func TestSummaryEmpty(t *testing.T) {
	empty := &Result{}
	assert.Equal(t, CohortSummary{}, empty.Summary())
}

func TestLetterHistogram(t *testing.T) {
	result := cohortResult()
	result.Students = append(result.Students, &StudentResult{
		StudentID: "s5", Name: "Eve", NormalizedPercent: 0.85, LetterGrade: "Pass",
	})

	histogram := result.LetterHistogram()
	require.Len(t, histogram, 4)

	// Canonical letters first in grade order, then nonstandard letters.
	assert.Equal(t, LetterCount{Letter: "B+", Count: 2}, histogram[0])
	assert.Equal(t, LetterCount{Letter: "C-", Count: 1}, histogram[1])
	assert.Equal(t, LetterCount{Letter: "F", Count: 1}, histogram[2])
	assert.Equal(t, LetterCount{Letter: "Pass", Count: 1}, histogram[3])
}

func TestFlagged(t *testing.T) {
	flagged := cohortResult().Flagged()
	require.Len(t, flagged, 1)
	assert.Equal(t, "Alice", flagged[0].Name)
}

func names(students []*StudentResult) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Name
	}
	return out
}
