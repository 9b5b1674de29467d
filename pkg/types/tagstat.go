package types

// TagStat holds right/wrong prediction counts for a single tag.
// Counts are non-negative by construction; accuracy is derived, never stored.
type TagStat struct {
	Tag   string
	Right int
	Wrong int
}

// Total returns the number of predictions observed for the tag.
func (s TagStat) Total() int {
	return s.Right + s.Wrong
}

// Accuracy returns the percentage of correct predictions, or 0 when the tag
// has no observations.
func (s TagStat) Accuracy() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Right) / float64(total) * 100
}
