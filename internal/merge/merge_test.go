package merge

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/paragen/internal/artifact"
	"github.com/dshills/paragen/pkg/types"
)

func writeArtifacts(t *testing.T, dir string, perTag map[string]int) {
	t.Helper()
	writer, err := artifact.NewWriter(dir)
	require.NoError(t, err)
	for tag, n := range perTag {
		questions := make([]string, n)
		for i := range questions {
			questions[i] = fmt.Sprintf("%s question %d", tag, i+1)
		}
		require.NoError(t, writer.Write(tag, questions))
	}
}

func TestMerge_AllRowsInTagOrder(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, map[string]int{"voting": 3, "nid_card": 3, "passport": 3})
	out := filepath.Join(t.TempDir(), "merged.csv")

	count, err := Merge(context.Background(), dir, out)
	require.NoError(t, err)
	assert.Equal(t, 9, count)

	rows, err := artifact.Read(out)
	require.NoError(t, err)
	require.Len(t, rows, 9)

	// Filename order is tag order; rows within a tag keep their file order.
	assert.Equal(t, "nid_card", rows[0].Tag)
	assert.Equal(t, "nid_card question 1", rows[0].Question)
	assert.Equal(t, "passport", rows[3].Tag)
	assert.Equal(t, "voting", rows[6].Tag)
	assert.Equal(t, "voting question 3", rows[8].Question)
}

func TestMerge_EmptyDirectory(t *testing.T) {
	_, err := Merge(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "merged.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoArtifacts)
}

func TestMerge_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, map[string]int{"voting": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Merge(ctx, dir, filepath.Join(t.TempDir(), "merged.csv"))
	assert.Error(t, err)
}

func TestValidate_CompleteDataset(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, map[string]int{"voting": 5, "nid_card": 5, "passport": 5})
	out := filepath.Join(t.TempDir(), "merged.csv")

	count, err := Merge(context.Background(), dir, out)
	require.NoError(t, err)

	report, err := Validate(out, count, 5)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 15, report.TotalRows)
	assert.Equal(t, 3, report.UniqueTags)
	assert.Empty(t, report.Mismatches)
}

func TestValidate_DetectsShortTag(t *testing.T) {
	dir := t.TempDir()
	// One tag short by a single row.
	writeArtifacts(t, dir, map[string]int{"voting": 5, "nid_card": 4, "passport": 5})
	out := filepath.Join(t.TempDir(), "merged.csv")

	count, err := Merge(context.Background(), dir, out)
	require.NoError(t, err)
	assert.Equal(t, 14, count)

	report, err := Validate(out, 15, 5)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 14, report.TotalRows)
	assert.Equal(t, 15, report.ExpectedRows)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "nid_card", report.Mismatches[0].Tag)
	assert.Equal(t, 4, report.Mismatches[0].Count)
}

func TestValidate_CountsEmptyFields(t *testing.T) {
	dir := t.TempDir()
	writer, err := artifact.NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, writer.Write("voting", []string{"good question", ""}))
	out := filepath.Join(t.TempDir(), "merged.csv")

	_, err = Merge(context.Background(), dir, out)
	require.NoError(t, err)

	report, err := Validate(out, 2, 2)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 1, report.EmptyFieldRow)
}

func TestSummary_RendersBothStates(t *testing.T) {
	ok := &ValidationReport{TotalRows: 10, ExpectedRows: 10, UniqueTags: 2}
	assert.Contains(t, ok.Summary(), "row count matches: 10")
	assert.Contains(t, ok.Summary(), "expected question count")

	bad := &ValidationReport{
		TotalRows:    9,
		ExpectedRows: 10,
		UniqueTags:   2,
		Mismatches:   []TagCountMismatch{{Tag: "voting", Count: 4}},
	}
	assert.Contains(t, bad.Summary(), "row count mismatch: got 9, expected 10")
	assert.Contains(t, bad.Summary(), "voting: 4")
}
