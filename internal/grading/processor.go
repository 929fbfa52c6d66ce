package grading

import (
	"sort"
	"strings"
)

// defaultPlaceholderPatterns match display names of test accounts that must
// be excluded from the run before any computation happens.
var defaultPlaceholderPatterns = []string{"Test Student", "Perfect"}

// Processor turns a roster, an assignment catalog and raw scores into
// processed student results. A Processor is safe for repeated runs; each run
// is independent and deterministic.
type Processor struct {
	cfg             *Config
	scale           *Scale
	modifiedScale   *Scale
	detectAnomalies bool
	placeholders    []string
}

// ProcessorOption customises a Processor.
type ProcessorOption func(*Processor)

// WithModifiedScale adds a second, independently resolved letter scale.
func WithModifiedScale(scale *Scale) ProcessorOption {
	return func(p *Processor) { p.modifiedScale = scale }
}

// WithoutAnomalyDetection disables the anomaly pass.
func WithoutAnomalyDetection() ProcessorOption {
	return func(p *Processor) { p.detectAnomalies = false }
}

// WithPlaceholderPatterns overrides the test-account name patterns.
func WithPlaceholderPatterns(patterns []string) ProcessorOption {
	return func(p *Processor) {
		if len(patterns) > 0 {
			p.placeholders = patterns
		}
	}
}

// NewProcessor builds a Processor. A nil scale falls back to the default
// MIT-style table.
func NewProcessor(cfg *Config, scale *Scale, opts ...ProcessorOption) *Processor {
	if scale == nil {
		scale = DefaultScale()
	}
	p := &Processor{
		cfg:             cfg,
		scale:           scale,
		detectAnomalies: true,
		placeholders:    defaultPlaceholderPatterns,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the completed, read-only outcome of one processing run.
type Result struct {
	Students            []*StudentResult
	NormalizationFactor float64
	ActiveCategories    []string
}

// Run executes the full computation: one pass building each student's
// results independently, then an anomaly pass over the completed population.
func (p *Processor) Run(assignments []Assignment, students []Student) *Result {
	categoryByAssignment := make(map[string]string, len(assignments))
	nameByAssignment := make(map[string]string, len(assignments))
	for _, a := range assignments {
		if a.Category != "" && p.cfg.HasCategory(a.Category) {
			categoryByAssignment[a.ID] = a.Category
		}
		nameByAssignment[a.ID] = a.Name
	}

	roster := make([]Student, 0, len(students))
	for _, student := range students {
		if p.isPlaceholder(student.Name) {
			continue
		}
		roster = append(roster, student)
	}

	active := computeActiveSet(p.cfg, assignments, roster)

	result := &Result{
		Students:            make([]*StudentResult, 0, len(roster)),
		NormalizationFactor: active.Factor(),
		ActiveCategories:    active.Categories(),
	}
	for _, student := range roster {
		result.Students = append(result.Students, p.processStudent(student, active, categoryByAssignment, nameByAssignment))
	}

	if p.detectAnomalies {
		detectAnomalies(result.Students, p.cfg.Categories())
	}

	return result
}

func (p *Processor) processStudent(student Student, active *ActiveSet, categoryByAssignment, nameByAssignment map[string]string) *StudentResult {
	processed := &StudentResult{
		StudentID:           student.ID,
		Name:                student.Name,
		Email:               student.Email,
		SISID:               student.SISID,
		Categories:          make(map[string]*CategoryResult),
		NormalizationFactor: active.Factor(),
	}

	// Group the student's counted scores by category. Iteration over the
	// score map is ordered by assignment ID so repeated runs agree
	// byte-for-byte.
	byCategory := make(map[string][]CountedAssignment)
	for _, assignmentID := range sortedScoreIDs(student.Scores) {
		record := student.Scores[assignmentID]
		if record.Excused || !active.Contains(assignmentID) {
			continue
		}
		category, ok := categoryByAssignment[assignmentID]
		if !ok {
			continue
		}
		fraction, points := normalizeScore(record.Score, record.MaxPoints)
		byCategory[category] = append(byCategory[category], CountedAssignment{
			AssignmentID: assignmentID,
			Name:         nameByAssignment[assignmentID],
			Fraction:     fraction,
			Points:       points,
		})
	}

	for _, category := range sortedKeys(byCategory) {
		aggregated := aggregateCategory(category, byCategory[category], p.cfg.DropFor(category), p.cfg.WeightFor(category))
		if aggregated == nil {
			continue
		}
		processed.Categories[category] = aggregated
		processed.RawPercent += aggregated.Contribution
	}

	processed.NormalizedPercent = processed.RawPercent / active.Factor()
	processed.LetterGrade = p.scale.Resolve(processed.NormalizedPercent)
	if p.modifiedScale != nil {
		processed.ModifiedLetterGrade = p.modifiedScale.Resolve(processed.NormalizedPercent)
	}

	return processed
}

func (p *Processor) isPlaceholder(name string) bool {
	for _, pattern := range p.placeholders {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func sortedScoreIDs(scores map[string]Score) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
