package types

import "time"

// Outcome classifies the terminal state of one processed work item.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// ItemResult records the outcome of processing one work item at a given
// ordinal in the work list.
type ItemResult struct {
	Ordinal  int
	Tag      string
	Outcome  Outcome
	Attempts int           // Provider calls made (0 for skips)
	Duration time.Duration // Wall time spent on the item
	Err      error         // Terminal error for failed items, nil otherwise
}

// RunStats accumulates per-run tallies across all processed items.
type RunStats struct {
	Success int
	Failed  int
	Skipped int
}

// Total returns the number of items attempted in the run.
func (s RunStats) Total() int {
	return s.Success + s.Failed + s.Skipped
}

// Record tallies one item outcome.
func (s *RunStats) Record(o Outcome) {
	switch o {
	case OutcomeSuccess:
		s.Success++
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}
