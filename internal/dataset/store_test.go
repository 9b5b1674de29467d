package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/paragen/pkg/types"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const exampleCSV = `query,tag
how do I vote,voting
where is my polling station,voting
how to get an nid card,nid_card
what is half of ten,fraction
,voting
lost my passport,Passport
`

const answerCSV = `tag,answer
voting,Visit your local election office.
nid_card,Apply at the registration center.
Passport,Contact the passport office.
`

func TestLoad_OrdersTagsCaseInsensitively(t *testing.T) {
	store, err := Load(writeCSV(t, "examples.csv", exampleCSV), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	assert.Equal(t, []string{"nid_card", "Passport", "voting"}, store.Tags())
}

func TestLoad_CaseCollidingTagsKeepStableOrder(t *testing.T) {
	// Tags that differ only in case tie under case-insensitive comparison;
	// the byte-order tie-break must keep the work list identical across
	// reloads, or a resumed checkpoint would point at a different tag.
	examples := "query,tag\n" +
		"how do I vote,Voting\n" +
		"where do I vote,voting\n" +
		"how to get an nid card,nid_card\n"
	examplesPath := writeCSV(t, "examples.csv", examples)
	answersPath := writeCSV(t, "answers.csv", answerCSV)

	want := []string{"nid_card", "Voting", "voting"}
	for i := 0; i < 50; i++ {
		store, err := Load(examplesPath, answersPath, "fraction")
		require.NoError(t, err)
		require.Equal(t, want, store.Tags(), "reload %d", i)
	}
}

func TestLoad_RejectsPathEscapingTags(t *testing.T) {
	for _, tag := range []string{"../evil", "sub/tag", `sub\tag`, "a..b"} {
		examples := "query,tag\nhow do I vote," + tag + "\n"
		_, err := Load(writeCSV(t, "examples.csv", examples), writeCSV(t, "answers.csv", answerCSV), "fraction")
		require.Error(t, err, "tag %q", tag)
		assert.ErrorIs(t, err, types.ErrInvalidTag)
	}
}

func TestLoad_DropsSentinelAndEmptyRows(t *testing.T) {
	store, err := Load(writeCSV(t, "examples.csv", exampleCSV), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	assert.NotContains(t, store.Tags(), "fraction")
	assert.Equal(t, 2, store.ExampleCount("voting"), "empty question row dropped")
}

func TestLoad_QuestionColumnAlias(t *testing.T) {
	examples := "question,tag\nhow do I vote,voting\n"
	store, err := Load(writeCSV(t, "examples.csv", examples), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	assert.Equal(t, 1, store.ExampleCount("voting"))
}

func TestLoad_MissingColumn(t *testing.T) {
	examples := "text,tag\nhow do I vote,voting\n"
	_, err := Load(writeCSV(t, "examples.csv", examples), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingColumn)
}

func TestLoad_EmptyExamples(t *testing.T) {
	examples := "query,tag\n,fraction\n"
	_, err := Load(writeCSV(t, "examples.csv", examples), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmptyDataset)
}

func TestAnswer(t *testing.T) {
	store, err := Load(writeCSV(t, "examples.csv", exampleCSV), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	answer, ok := store.Answer("voting")
	assert.True(t, ok)
	assert.Equal(t, "Visit your local election office.", answer)

	_, ok = store.Answer("unknown")
	assert.False(t, ok)
}

func TestSample_WithoutReplacement(t *testing.T) {
	var examples = "query,tag\n"
	for _, q := range []string{"a", "b", "c", "d", "e"} {
		examples += "question " + q + ",voting\n"
	}
	store, err := Load(writeCSV(t, "examples.csv", examples), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	sample := store.Sample("voting", 3)
	require.Len(t, sample, 3)
	seen := make(map[string]bool)
	for _, q := range sample {
		assert.False(t, seen[q], "sample must not repeat questions")
		seen[q] = true
	}
}

func TestSample_FewerAvailableThanRequested(t *testing.T) {
	store, err := Load(writeCSV(t, "examples.csv", exampleCSV), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	sample := store.Sample("voting", 30)
	assert.Len(t, sample, 2)
}

func TestSample_UnknownTag(t *testing.T) {
	store, err := Load(writeCSV(t, "examples.csv", exampleCSV), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	assert.Empty(t, store.Sample("unknown", 5))
}

func TestReadCSV_PadsShortRows(t *testing.T) {
	examples := "query,tag\nhow do I vote,voting\nshort row only\n"
	store, err := Load(writeCSV(t, "examples.csv", examples), writeCSV(t, "answers.csv", answerCSV), "fraction")
	require.NoError(t, err)

	// The short row has no tag, so it contributes nothing.
	assert.Equal(t, 1, store.ExampleCount("voting"))
}
