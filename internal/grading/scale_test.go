package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleResolveBoundaries(t *testing.T) {
	scale := DefaultScale()

	tests := []struct {
		percentage float64
		letter     string
	}{
		{0.00, "F"},
		{0.60, "F"},
		{0.61, "D-"},
		{0.6999, "D-"},
		{0.70, "D"},
		{0.84, "B-"},
		{0.85, "B-"},
		{0.8999, "B"},
		{0.90, "B+"},
		{0.94, "A-"},
		{0.97, "A"},
		{1.00, "A+"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.letter, scale.Resolve(tc.percentage), "percentage %.4f", tc.percentage)
	}
}

func TestScaleResolveExtraCredit(t *testing.T) {
	// Bonus points can push a percentage above 100; the top letter applies.
	assert.Equal(t, "A+", DefaultScale().Resolve(1.10))
}

func TestScaleResolveClampsBelowLowest(t *testing.T) {
	scale, err := NewScaleFromThresholds([]Threshold{
		{Min: 0.50, Letter: "Pass"},
		{Min: 0.00, Letter: "Fail"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Fail", scale.Resolve(-0.25))

	// Even a scale whose lowest threshold is above zero resolves everything
	// beneath it to that lowest entry.
	narrow, err := NewScaleFromThresholds([]Threshold{{Min: 0.80, Letter: "Credit"}})
	require.NoError(t, err)
	assert.Equal(t, "Credit", narrow.Resolve(0.10))
}

func TestNewScaleFromMap(t *testing.T) {
	scale, err := NewScale(map[float64]string{
		0.00: "F",
		0.70: "P",
	})
	require.NoError(t, err)

	assert.Equal(t, "F", scale.Resolve(0.69))
	assert.Equal(t, "P", scale.Resolve(0.70))

	thresholds := scale.Thresholds()
	require.Len(t, thresholds, 2)
	assert.Equal(t, 0.00, thresholds[0].Min)
	assert.Equal(t, 0.70, thresholds[1].Min)
}

func TestNewScaleRejectsEmpty(t *testing.T) {
	_, err := NewScale(nil)
	assert.ErrorIs(t, err, ErrEmptyScale)

	_, err = NewScaleFromThresholds(nil)
	assert.ErrorIs(t, err, ErrEmptyScale)
}
