// Package merge concatenates per-tag artifacts into one dataset and checks
// the result's structural invariants. Validation is observational: problems
// are reported to the operator, never raised, and the merged artifact is
// produced regardless.
package merge

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/paragen/internal/artifact"
	"github.com/dshills/paragen/pkg/types"
)

// Merge reads every artifact in artifactDir (sorted by filename, which is
// tag order), concatenates their rows preserving per-artifact order, and
// writes the combined CSV to outPath. Artifact files are read concurrently
// (unlike generation there is no external rate limit here), but assembly
// order stays deterministic. Returns the number of merged data rows.
func Merge(ctx context.Context, artifactDir, outPath string) (int, error) {
	paths, err := artifact.List(artifactDir)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("%w in %s", types.ErrNoArtifacts, artifactDir)
	}

	// Read in parallel, assemble in file order.
	perFile := make([][]types.QuestionRow, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := artifact.Read(path)
			if err != nil {
				return err
			}
			perFile[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var merged []types.QuestionRow
	for _, rows := range perFile {
		merged = append(merged, rows...)
	}

	if err := writeDataset(outPath, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

func writeDataset(outPath string, rows []types.QuestionRow) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create merged output %s: %w", outPath, err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if err := w.Write(artifact.Header); err != nil {
		return fmt.Errorf("write merged header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Question, row.Tag}); err != nil {
			return fmt.Errorf("write merged row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush merged output: %w", err)
	}
	return nil
}

// TagCountMismatch names a tag whose row count differs from the expected
// per-tag count.
type TagCountMismatch struct {
	Tag   string
	Count int
}

// ValidationReport summarizes the structural checks over a merged dataset.
type ValidationReport struct {
	TotalRows     int
	ExpectedRows  int
	UniqueTags    int
	Mismatches    []TagCountMismatch
	EmptyFieldRow int // Number of rows with an empty question or tag
}

// OK reports whether every check passed.
func (r *ValidationReport) OK() bool {
	return r.TotalRows == r.ExpectedRows && len(r.Mismatches) == 0 && r.EmptyFieldRow == 0
}

// Summary renders the report as human-readable lines.
func (r *ValidationReport) Summary() string {
	var b strings.Builder
	if r.TotalRows == r.ExpectedRows {
		fmt.Fprintf(&b, "row count matches: %d\n", r.TotalRows)
	} else {
		fmt.Fprintf(&b, "row count mismatch: got %d, expected %d\n", r.TotalRows, r.ExpectedRows)
	}
	fmt.Fprintf(&b, "unique tags: %d\n", r.UniqueTags)
	if len(r.Mismatches) == 0 {
		b.WriteString("every tag has the expected question count\n")
	} else {
		fmt.Fprintf(&b, "%d tags with unexpected question counts:\n", len(r.Mismatches))
		for i, m := range r.Mismatches {
			if i == 5 {
				b.WriteString("  ...\n")
				break
			}
			fmt.Fprintf(&b, "  - %s: %d\n", m.Tag, m.Count)
		}
	}
	if r.EmptyFieldRow == 0 {
		b.WriteString("all rows have question and tag populated\n")
	} else {
		fmt.Fprintf(&b, "%d rows with empty fields\n", r.EmptyFieldRow)
	}
	return b.String()
}

// Validate re-reads the merged output and checks total row count, per-tag
// counts, and empty fields. expectedPerTag is the configured target count,
// the same value the generation stage used.
func Validate(outPath string, expectedTotal, expectedPerTag int) (*ValidationReport, error) {
	rows, err := artifact.Read(outPath)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{
		TotalRows:    len(rows),
		ExpectedRows: expectedTotal,
	}

	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.Tag]++
		if !row.Valid() {
			report.EmptyFieldRow++
		}
	}
	report.UniqueTags = len(counts)

	for tag, count := range counts {
		if count != expectedPerTag {
			report.Mismatches = append(report.Mismatches, TagCountMismatch{Tag: tag, Count: count})
		}
	}
	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].Tag < report.Mismatches[j].Tag
	})

	return report, nil
}
