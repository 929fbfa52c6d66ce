package grading

// normalizeScore converts a raw score and max points into a comparable
// fraction plus the raw points for display. A nil score or missing/zero max
// yields zero. Scores above maximum propagate unclamped: bonus points are
// legitimate extra credit.
func normalizeScore(score, maxPoints *float64) (fraction, points float64) {
	if score != nil && maxPoints != nil && *maxPoints > 0 {
		return *score / *maxPoints, *score
	}
	return 0, 0
}
