package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(fractions ...float64) []CountedAssignment {
	out := make([]CountedAssignment, len(fractions))
	for i, f := range fractions {
		out[i] = CountedAssignment{
			AssignmentID: string(rune('a' + i)),
			Name:         "HW " + string(rune('1'+i)),
			Fraction:     f,
			Points:       f * 10,
		}
	}
	return out
}

func TestAggregateCategoryDropLowest(t *testing.T) {
	result := aggregateCategory("homework", entries(0.5, 0.8, 0.9), 1, 0.4)
	require.NotNil(t, result)

	assert.InDelta(t, 0.85, result.Average, 1e-9)
	assert.InDelta(t, 0.34, result.Contribution, 1e-9)
	assert.Len(t, result.Items, 2)

	require.NotNil(t, result.Dropped)
	assert.Equal(t, "a", result.Dropped.AssignmentID)
	assert.InDelta(t, 0.5, result.Dropped.Fraction, 1e-9)
}

func TestAggregateCategoryNoDrop(t *testing.T) {
	result := aggregateCategory("homework", entries(0.5, 0.8, 0.9), 0, 0.4)
	require.NotNil(t, result)

	assert.InDelta(t, (0.5+0.8+0.9)/3, result.Average, 1e-9)
	assert.Nil(t, result.Dropped)
	assert.Len(t, result.Items, 3)
}

func TestAggregateCategoryDropSkippedWhenTooFewItems(t *testing.T) {
	// The drop rule never empties a category: with count <= drop the
	// entries all survive.
	result := aggregateCategory("exams", entries(0.6), 1, 0.5)
	require.NotNil(t, result)

	assert.InDelta(t, 0.6, result.Average, 1e-9)
	assert.Nil(t, result.Dropped)
	assert.Len(t, result.Items, 1)
}

func TestAggregateCategoryMultiDropRecordsOnlyFirst(t *testing.T) {
	result := aggregateCategory("quizzes", entries(0.3, 0.4, 0.7, 0.9), 2, 0.2)
	require.NotNil(t, result)

	assert.InDelta(t, 0.8, result.Average, 1e-9)
	assert.Len(t, result.Items, 2)

	require.NotNil(t, result.Dropped)
	assert.InDelta(t, 0.3, result.Dropped.Fraction, 1e-9)
}

func TestAggregateCategoryStableTieOrder(t *testing.T) {
	tied := []CountedAssignment{
		{AssignmentID: "first", Fraction: 0.5},
		{AssignmentID: "second", Fraction: 0.5},
		{AssignmentID: "third", Fraction: 0.9},
	}
	result := aggregateCategory("homework", tied, 1, 1.0)
	require.NotNil(t, result)
	require.NotNil(t, result.Dropped)

	// Ties drop the earlier entry in input order.
	assert.Equal(t, "first", result.Dropped.AssignmentID)
	assert.Equal(t, "second", result.Items[0].AssignmentID)
}

func TestAggregateCategoryEmpty(t *testing.T) {
	assert.Nil(t, aggregateCategory("homework", nil, 1, 0.4))
}

func TestAggregateCategoryExtraCredit(t *testing.T) {
	// Fractions above 1.0 count at face value.
	result := aggregateCategory("homework", entries(1.1, 0.9), 0, 0.5)
	require.NotNil(t, result)
	assert.InDelta(t, 1.0, result.Average, 1e-9)
	assert.InDelta(t, 0.5, result.Contribution, 1e-9)
}
