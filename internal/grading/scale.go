package grading

import (
	"errors"
	"sort"
)

// ErrEmptyScale marks a letter scale with no thresholds.
var ErrEmptyScale = errors.New("letter grade scale requires at least one threshold")

// Threshold maps a minimum percentage (fraction in [0,1]) to a letter label.
type Threshold struct {
	Min    float64
	Letter string
}

// Scale resolves a percentage to a letter grade through an ordered threshold
// table. Scales are immutable after construction.
type Scale struct {
	thresholds []Threshold
}

// NewScale builds a scale from a threshold table.
func NewScale(table map[float64]string) (*Scale, error) {
	if len(table) == 0 {
		return nil, ErrEmptyScale
	}
	thresholds := make([]Threshold, 0, len(table))
	for min, letter := range table {
		thresholds = append(thresholds, Threshold{Min: min, Letter: letter})
	}
	return NewScaleFromThresholds(thresholds)
}

// NewScaleFromThresholds builds a scale from an explicit threshold list.
func NewScaleFromThresholds(thresholds []Threshold) (*Scale, error) {
	if len(thresholds) == 0 {
		return nil, ErrEmptyScale
	}
	sorted := make([]Threshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
	return &Scale{thresholds: sorted}, nil
}

// Resolve returns the letter for the greatest threshold not exceeding the
// percentage. Percentages below the lowest threshold clamp to the lowest
// entry; percentages above the highest (extra credit) resolve to the top.
func (s *Scale) Resolve(percentage float64) string {
	idx := sort.Search(len(s.thresholds), func(i int) bool {
		return s.thresholds[i].Min > percentage
	})
	if idx == 0 {
		return s.thresholds[0].Letter
	}
	return s.thresholds[idx-1].Letter
}

// Thresholds returns a copy of the ordered threshold table.
func (s *Scale) Thresholds() []Threshold {
	out := make([]Threshold, len(s.thresholds))
	copy(out, s.thresholds)
	return out
}

// DefaultScale returns the MIT-style letter grade table used when no custom
// scale is supplied.
func DefaultScale() *Scale {
	scale, _ := NewScaleFromThresholds([]Threshold{
		{Min: 0.00, Letter: "F"},
		{Min: 0.61, Letter: "D-"},
		{Min: 0.70, Letter: "D"},
		{Min: 0.74, Letter: "C-"},
		{Min: 0.77, Letter: "C"},
		{Min: 0.80, Letter: "C+"},
		{Min: 0.84, Letter: "B-"},
		{Min: 0.87, Letter: "B"},
		{Min: 0.90, Letter: "B+"},
		{Min: 0.94, Letter: "A-"},
		{Min: 0.97, Letter: "A"},
		{Min: 1.00, Letter: "A+"},
	})
	return scale
}
