package grading

import (
	"errors"
	"fmt"
	"sort"
)

// weightTolerance is the slack allowed when comparing weight sums to 1.0.
const weightTolerance = 1e-8

// ErrBadWeights marks an invalid category weight configuration.
var ErrBadWeights = errors.New("bad category weights")

// Config is the validated, immutable configuration for one processing run.
type Config struct {
	weights      map[string]float64
	dropLowest   map[string]int
	allowPartial bool
	onlyGraded   bool
	totalWeight  float64
}

// NewConfig validates category weights and builds a run configuration.
// Weights must not exceed 1.0 and must not sum to zero; unless allowPartial
// is set they must sum to exactly 1.0 within tolerance. Validation failures
// are fatal before any student is processed.
func NewConfig(weights map[string]float64, dropLowest map[string]int, allowPartial, onlyGraded bool) (*Config, error) {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	if total > 1.0+weightTolerance {
		return nil, fmt.Errorf("%w: weights sum to %.3f, cannot exceed 1.0", ErrBadWeights, total)
	}
	if total < weightTolerance {
		return nil, fmt.Errorf("%w: weights must sum to greater than 0", ErrBadWeights)
	}
	if !allowPartial && (total < 1.0-weightTolerance || total > 1.0+weightTolerance) {
		return nil, fmt.Errorf("%w: weights sum to %.3f, expected 1.0", ErrBadWeights, total)
	}

	cfgWeights := make(map[string]float64, len(weights))
	for name, w := range weights {
		cfgWeights[name] = w
	}
	cfgDrops := make(map[string]int, len(dropLowest))
	for name, n := range dropLowest {
		if n > 0 {
			cfgDrops[name] = n
		}
	}

	return &Config{
		weights:      cfgWeights,
		dropLowest:   cfgDrops,
		allowPartial: allowPartial,
		onlyGraded:   onlyGraded,
		totalWeight:  total,
	}, nil
}

// TotalWeight returns the sum of all configured category weights.
func (c *Config) TotalWeight() float64 {
	return c.totalWeight
}

// IsPartial reports whether this configuration covers less than the full
// semester weight.
func (c *Config) IsPartial() bool {
	return c.allowPartial && (c.totalWeight < 1.0-weightTolerance || c.totalWeight > 1.0+weightTolerance)
}

// OnlyGraded reports whether the run restricts computation to assignments
// with at least one nonzero score in the class.
func (c *Config) OnlyGraded() bool {
	return c.onlyGraded
}

// WeightFor returns the weight fraction for a category, zero when unknown.
func (c *Config) WeightFor(category string) float64 {
	return c.weights[category]
}

// DropFor returns the drop-lowest count for a category.
func (c *Config) DropFor(category string) int {
	return c.dropLowest[category]
}

// HasCategory reports whether the category carries a configured weight.
func (c *Config) HasCategory(category string) bool {
	_, ok := c.weights[category]
	return ok
}

// Categories returns the configured category names in sorted order.
func (c *Config) Categories() []string {
	names := make([]string, 0, len(c.weights))
	for name := range c.weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
