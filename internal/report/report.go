// Package report aggregates prediction accuracy per tag from an evaluation
// CSV. It is pure post-hoc aggregation: no concurrency, no persistence.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dshills/paragen/pkg/types"
)

// SortKey selects the ordering of the rendered table.
type SortKey string

const (
	SortByCount    SortKey = "count"
	SortByAccuracy SortKey = "accuracy"
	SortByName     SortKey = "name"
)

// Options configures analysis output.
type Options struct {
	Sort       SortKey
	Descending bool
	TopN       int // 0 = show all

	// Column names in the evaluation CSV.
	ExpectedColumn  string
	PredictedColumn string
}

// DefaultOptions returns the conventional evaluation CSV layout, sorted by
// total count descending.
func DefaultOptions() Options {
	return Options{
		Sort:            SortByCount,
		Descending:      true,
		ExpectedColumn:  "expected tag",
		PredictedColumn: "predicted tag",
	}
}

// Analysis holds per-tag accuracy statistics.
type Analysis struct {
	Stats []types.TagStat
}

// Load reads an evaluation CSV and tallies right/wrong predictions per
// expected tag.
func Load(path string, opts Options) (*Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", types.ErrEmptyDataset, path)
	}

	header := all[0]
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	expectedIdx := -1
	predictedIdx := -1
	for i, col := range header {
		switch col {
		case strings.ToLower(opts.ExpectedColumn):
			expectedIdx = i
		case strings.ToLower(opts.PredictedColumn):
			predictedIdx = i
		}
	}
	if expectedIdx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", types.ErrMissingColumn, opts.ExpectedColumn, path)
	}
	if predictedIdx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", types.ErrMissingColumn, opts.PredictedColumn, path)
	}

	byTag := make(map[string]*types.TagStat)
	var order []string
	for _, record := range all[1:] {
		if expectedIdx >= len(record) || predictedIdx >= len(record) {
			continue
		}
		expected := strings.TrimSpace(record[expectedIdx])
		predicted := strings.TrimSpace(record[predictedIdx])
		if expected == "" {
			continue
		}

		stat, ok := byTag[expected]
		if !ok {
			stat = &types.TagStat{Tag: expected}
			byTag[expected] = stat
			order = append(order, expected)
		}
		if expected == predicted {
			stat.Right++
		} else {
			stat.Wrong++
		}
	}

	stats := make([]types.TagStat, 0, len(order))
	for _, tag := range order {
		stats = append(stats, *byTag[tag])
	}
	return &Analysis{Stats: stats}, nil
}

// Totals returns the overall right/wrong counts and accuracy percentage.
func (a *Analysis) Totals() (right, wrong int, accuracy float64) {
	for _, s := range a.Stats {
		right += s.Right
		wrong += s.Wrong
	}
	total := right + wrong
	if total > 0 {
		accuracy = float64(right) / float64(total) * 100
	}
	return right, wrong, accuracy
}

// Sorted returns the stats ordered per the options, truncated to TopN when
// set.
func (a *Analysis) Sorted(opts Options) []types.TagStat {
	out := make([]types.TagStat, len(a.Stats))
	copy(out, a.Stats)

	less := func(i, j int) bool {
		switch opts.Sort {
		case SortByAccuracy:
			return out[i].Accuracy() < out[j].Accuracy()
		case SortByName:
			return strings.ToLower(out[i].Tag) < strings.ToLower(out[j].Tag)
		default:
			return out[i].Total() < out[j].Total()
		}
	}
	if opts.Descending {
		sort.SliceStable(out, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(out, less)
	}

	if opts.TopN > 0 && opts.TopN < len(out) {
		out = out[:opts.TopN]
	}
	return out
}

// Worst returns the n tags with the lowest accuracy.
func (a *Analysis) Worst(n int) []types.TagStat {
	return a.Sorted(Options{Sort: SortByAccuracy, TopN: n})
}

// Best returns the n tags with the highest accuracy.
func (a *Analysis) Best(n int) []types.TagStat {
	return a.Sorted(Options{Sort: SortByAccuracy, Descending: true, TopN: n})
}

// Render writes the accuracy table as aligned text.
func (a *Analysis) Render(opts Options) string {
	right, wrong, accuracy := a.Totals()
	stats := a.Sorted(opts)

	var b strings.Builder
	fmt.Fprintf(&b, "Total predictions: %d | Right: %d | Wrong: %d | Overall accuracy: %.2f%%\n\n",
		right+wrong, right, wrong, accuracy)

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTag\tRight\tWrong\tTotal\tAccuracy")
	for i, s := range stats {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.2f%%\n",
			i+1, s.Tag, s.Right, s.Wrong, s.Total(), s.Accuracy())
	}
	_ = w.Flush()

	if opts.TopN > 0 && opts.TopN < len(a.Stats) {
		fmt.Fprintf(&b, "\nShowing top %d of %d tags\n", opts.TopN, len(a.Stats))
	}
	return b.String()
}
