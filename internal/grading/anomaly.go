package grading

import "fmt"

// Thresholds for the three anomaly checks.
const (
	gapHighFloor     = 0.90
	gapMinimum       = 0.20
	varianceFloor    = 0.20
	varianceMeanGate = 0.30
	outlierZScore    = 2.0
	outlierAvgFloor  = 0.95
)

type categoryStats struct {
	mean  float64
	stdev float64
}

// detectAnomalies runs the three heuristic checks against the completed
// population and appends human-readable findings to each student, in a fixed
// order: cross-category gaps first, then intra-category variance, then
// class-relative outliers. Findings are never deduplicated.
func detectAnomalies(students []*StudentResult, categories []string) {
	stats := classStatsByCategory(students, categories)

	for _, student := range students {
		flagCategoryGaps(student)
		flagHighVariance(student)
		flagOutliers(student, stats)
	}
}

// classStatsByCategory computes the class-wide mean and sample standard
// deviation of per-student category averages. Categories with fewer than two
// students holding a result are skipped.
func classStatsByCategory(students []*StudentResult, categories []string) map[string]categoryStats {
	stats := make(map[string]categoryStats, len(categories))
	for _, category := range categories {
		var averages []float64
		for _, student := range students {
			if result, ok := student.Categories[category]; ok {
				averages = append(averages, result.Average)
			}
		}
		if len(averages) < 2 {
			continue
		}
		stats[category] = categoryStats{
			mean:  Mean(averages),
			stdev: SampleStdDev(averages),
		}
	}
	return stats
}

// flagCategoryGaps flags pairs of categories where the stronger side is
// above 90% and the spread exceeds 20 points. One-sided on purpose: it
// catches "aced the easy part, bombed the hard part" at the top end and
// stays silent on symmetric gaps at lower absolute levels.
func flagCategoryGaps(student *StudentResult) {
	names := student.CategoryNames()
	if len(names) < 2 {
		return
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			first := student.Categories[names[i]].Average
			second := student.Categories[names[j]].Average
			gap := first - second
			if gap < 0 {
				gap = -gap
			}
			high, low := first, second
			highName, lowName := names[i], names[j]
			if second > first {
				high, low = second, first
				highName, lowName = names[j], names[i]
			}
			if high > gapHighFloor && gap > gapMinimum {
				student.Anomalies = append(student.Anomalies, fmt.Sprintf(
					"%s avg is %.1f%% but %s avg is only %.1f%% (gap: %.1f%%)",
					highName, high*100, lowName, low*100, gap*100,
				))
			}
		}
	}
}

// flagHighVariance flags categories whose surviving scores swing widely.
// Low-mean categories are exempt so uniformly poor performance is not
// reported as variance.
func flagHighVariance(student *StudentResult) {
	for _, category := range student.CategoryNames() {
		result := student.Categories[category]
		if len(result.Items) < 3 {
			continue
		}
		fractions := make([]float64, len(result.Items))
		for i, item := range result.Items {
			fractions[i] = item.Fraction
		}
		stdev := SampleStdDev(fractions)
		mean := Mean(fractions)
		if stdev > varianceFloor && mean > varianceMeanGate {
			student.Anomalies = append(student.Anomalies, fmt.Sprintf(
				"High variance in %s scores (stdev: %.1f%%, mean: %.1f%%)",
				category, stdev*100, mean*100,
			))
		}
	}
}

// flagOutliers flags suspiciously perfect category averages relative to the
// class distribution. One-sided: only unusually high performance is flagged.
func flagOutliers(student *StudentResult, stats map[string]categoryStats) {
	for _, category := range student.CategoryNames() {
		classStats, ok := stats[category]
		if !ok || classStats.stdev <= 0 {
			continue
		}
		average := student.Categories[category].Average
		zScore := (average - classStats.mean) / classStats.stdev
		if zScore > outlierZScore && average > outlierAvgFloor {
			student.Anomalies = append(student.Anomalies, fmt.Sprintf(
				"Statistical outlier in %s: %.1f%% (class mean: %.1f%%, z-score: %.2f)",
				category, average*100, classStats.mean*100, zScore,
			))
		}
	}
}
