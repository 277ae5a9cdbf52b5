package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRead(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, Entry{Seq: 0, Kind: "data", Payload: `{"data":{"a":1}}`, Retained: true}))
	require.NoError(t, j.Record(ctx, Entry{Seq: 1, Kind: "event", Event: "cart:add", Payload: `{"event":"cart:add"}`, Retained: true}))
	require.NoError(t, j.Record(ctx, Entry{Seq: 2, Kind: "invalid", Payload: `"garbage"`, Retained: false}))

	entries, err := j.Read(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 0, entries[0].Seq)
	assert.Equal(t, "data", entries[0].Kind)
	assert.True(t, entries[0].Retained)

	assert.Equal(t, "cart:add", entries[1].Event)

	assert.Equal(t, "invalid", entries[2].Kind)
	assert.False(t, entries[2].Retained)
}

func TestRead_OrderedBySeq(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	// Insert out of order; Read re-establishes seq order.
	require.NoError(t, j.Record(ctx, Entry{Seq: 5, Kind: "data", Payload: `{}`}))
	require.NoError(t, j.Record(ctx, Entry{Seq: 1, Kind: "data", Payload: `{}`}))
	require.NoError(t, j.Record(ctx, Entry{Seq: 3, Kind: "data", Payload: `{}`}))

	entries, err := j.Read(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []int{1, 3, 5}, []int{entries[0].Seq, entries[1].Seq, entries[2].Seq})
}

func TestRecord_DuplicateSeqIgnored(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, Entry{Seq: 0, Kind: "data", Payload: `{"first":true}`}))
	require.NoError(t, j.Record(ctx, Entry{Seq: 0, Kind: "data", Payload: `{"second":true}`}))

	entries, err := j.Read(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Payload, "first")
}

func TestRead_EmptyJournal(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.Read(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
