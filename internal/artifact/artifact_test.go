package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	require.NoError(t, err)

	questions := []string{
		"how do I register to vote",
		"what documents do I need, exactly?",
		`question with "embedded quotes" inside`,
	}
	require.NoError(t, writer.Write("voting", questions))

	rows, err := Read(filepath.Join(dir, "voting.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, questions[i], row.Question)
		assert.Equal(t, "voting", row.Tag)
	}
}

func TestWrite_OverwritesPriorArtifact(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	require.NoError(t, err)

	require.NoError(t, writer.Write("voting", []string{"old question"}))
	require.NoError(t, writer.Write("voting", []string{"new question", "another"}))

	rows, err := Read(filepath.Join(dir, "voting.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new question", rows[0].Question)
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, writer.Write("voting", []string{"q"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "voting.csv", entries[0].Name())
}

func TestNewWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "individual_tags")
	_, err := NewWriter(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestList_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	require.NoError(t, err)

	for _, tag := range []string{"voting", "nid_card", "passport"} {
		require.NoError(t, writer.Write(tag, []string{"q"}))
	}
	// Non-CSV clutter must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	paths, err := List(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "nid_card.csv", filepath.Base(paths[0]))
	assert.Equal(t, "passport.csv", filepath.Base(paths[1]))
	assert.Equal(t, "voting.csv", filepath.Base(paths[2]))
}

func TestList_MissingDirectory(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRead_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	rows, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdr.csv")
	require.NoError(t, os.WriteFile(path, []byte("question,tag\n"), 0o644))

	rows, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
