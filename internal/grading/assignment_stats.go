package grading

// AssignmentStatistics summarises class performance on one assignment in raw
// points.
type AssignmentStatistics struct {
	Submitted int
	Missing   int
	Excused   int
	Mean      float64
	Median    float64
	Min       float64
	Max       float64
}

// StatsForAssignment computes score statistics for a single assignment over
// the roster. Students without a record, or with an ungraded record, count
// as missing; excused students count toward neither group.
func StatsForAssignment(assignmentID string, students []Student) AssignmentStatistics {
	var stats AssignmentStatistics
	var scores []float64

	for _, student := range students {
		record, ok := student.Scores[assignmentID]
		if !ok {
			stats.Missing++
			continue
		}
		if record.Excused {
			stats.Excused++
			continue
		}
		if record.Score != nil {
			scores = append(scores, *record.Score)
		} else {
			stats.Missing++
		}
	}

	stats.Submitted = len(scores)
	if len(scores) == 0 {
		return stats
	}

	stats.Mean = Mean(scores)
	stats.Median = Median(scores)
	stats.Min, stats.Max = scores[0], scores[0]
	for _, s := range scores {
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}
	return stats
}
