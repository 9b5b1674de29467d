package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/paragen/pkg/types"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "paragen.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = l.Close()
	})
	return l
}

func TestStartAndFinishRun(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	id, err := l.StartRun(ctx, "generate", "openai", "gpt-5")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stats := types.RunStats{Success: 3, Failed: 1, Skipped: 2}
	require.NoError(t, l.FinishRun(ctx, id, stats))

	runs, err := l.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "generate", runs[0].Mode)
	assert.Equal(t, "openai", runs[0].Provider)
	assert.Equal(t, "gpt-5", runs[0].Model)
	assert.Equal(t, 3, runs[0].Success)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 2, runs[0].Skipped)
	assert.False(t, runs[0].FinishedAt.IsZero())
}

func TestFinishRun_UnknownRun(t *testing.T) {
	l := openTestLedger(t)

	err := l.FinishRun(context.Background(), "no-such-run", types.RunStats{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordItem_RoundTrip(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	id, err := l.StartRun(ctx, "generate", "gemini", "gemini-2.5-flash")
	require.NoError(t, err)

	results := []types.ItemResult{
		{Ordinal: 0, Tag: "nid_card", Outcome: types.OutcomeFailed, Attempts: 3,
			Duration: 1500 * time.Millisecond, Err: errors.New("too few questions")},
		{Ordinal: 1, Tag: "voting", Outcome: types.OutcomeSuccess, Attempts: 1,
			Duration: 900 * time.Millisecond},
		{Ordinal: 2, Tag: "stale", Outcome: types.OutcomeSkipped},
	}
	for _, r := range results {
		require.NoError(t, l.RecordItem(ctx, id, r))
	}

	items, err := l.ListItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "nid_card", items[0].Tag)
	assert.Equal(t, types.OutcomeFailed, items[0].Outcome)
	assert.Equal(t, 3, items[0].Attempts)
	assert.Equal(t, 1500*time.Millisecond, items[0].Duration)
	require.Error(t, items[0].Err)
	assert.Equal(t, "too few questions", items[0].Err.Error())

	assert.Equal(t, types.OutcomeSuccess, items[1].Outcome)
	assert.Nil(t, items[1].Err)
	assert.Equal(t, types.OutcomeSkipped, items[2].Outcome)
}

func TestRecordItem_UpsertReplacesEarlierRow(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	id, err := l.StartRun(ctx, "generate", "openai", "gpt-5")
	require.NoError(t, err)

	first := types.ItemResult{Ordinal: 0, Tag: "voting", Outcome: types.OutcomeFailed,
		Attempts: 3, Err: errors.New("timeout")}
	require.NoError(t, l.RecordItem(ctx, id, first))

	// A re-run of the same ordinal overwrites the earlier outcome.
	second := types.ItemResult{Ordinal: 0, Tag: "voting", Outcome: types.OutcomeSuccess, Attempts: 1}
	require.NoError(t, l.RecordItem(ctx, id, second))

	items, err := l.ListItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.OutcomeSuccess, items[0].Outcome)
	assert.Equal(t, 1, items[0].Attempts)
	assert.Nil(t, items[0].Err)
}

func TestListRuns_MostRecentFirstWithLimit(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		id, err := l.StartRun(ctx, "generate", "openai", "gpt-5")
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := l.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paragen.db")

	l, err := Open(path)
	require.NoError(t, err)
	id, err := l.StartRun(context.Background(), "tag", "gemini", "gemini-2.5-flash")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	// Migrations are idempotent and data survives reopen.
	l2, err := Open(path)
	require.NoError(t, err)
	defer func() {
		_ = l2.Close()
	}()

	runs, err := l2.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "tag", runs[0].Mode)
}
