package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-9)
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 2, 3}), 1e-9)

	// The input slice is left unsorted.
	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, SampleStdDev(nil))
	assert.Equal(t, 0.0, SampleStdDev([]float64{5}))
	assert.InDelta(t, 1.0, SampleStdDev([]float64{1, 2, 3}), 1e-9)
	assert.Equal(t, 0.0, SampleStdDev([]float64{4, 4, 4}))
}

func TestStatsForAssignment(t *testing.T) {
	students := []Student{
		{ID: "s1", Scores: map[string]Score{
			"hw1": {AssignmentID: "hw1", Score: fp(8), MaxPoints: fp(10)},
		}},
		{ID: "s2", Scores: map[string]Score{
			"hw1": {AssignmentID: "hw1", Score: fp(6), MaxPoints: fp(10)},
		}},
		{ID: "s3", Scores: map[string]Score{
			"hw1": {AssignmentID: "hw1", Excused: true},
		}},
		{ID: "s4", Scores: map[string]Score{
			"hw1": {AssignmentID: "hw1", Missing: true},
		}},
		{ID: "s5", Scores: map[string]Score{}},
	}

	stats := StatsForAssignment("hw1", students)
	assert.Equal(t, 2, stats.Submitted)
	assert.Equal(t, 2, stats.Missing)
	assert.Equal(t, 1, stats.Excused)
	assert.InDelta(t, 7.0, stats.Mean, 1e-9)
	assert.InDelta(t, 7.0, stats.Median, 1e-9)
	assert.InDelta(t, 6.0, stats.Min, 1e-9)
	assert.InDelta(t, 8.0, stats.Max, 1e-9)
}

func TestStatsForAssignmentNoScores(t *testing.T) {
	students := []Student{
		{ID: "s1", Scores: map[string]Score{"hw1": {AssignmentID: "hw1", Excused: true}}},
	}
	stats := StatsForAssignment("hw1", students)
	assert.Equal(t, 0, stats.Submitted)
	assert.Equal(t, 1, stats.Excused)
	assert.Equal(t, 0.0, stats.Mean)
}
