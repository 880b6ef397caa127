package rfc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

func TestNewBatchWrapsEvents(t *testing.T) {
	events := NewBatch("init", foundation.None[EventContext](),
		APINamed{Name: "Todo API"},
		GitStateSet{BranchName: "main", CommitID: "abc123"},
	)
	require.Len(t, events, 4)

	start, ok := events[0].(BatchCommitStarted)
	require.True(t, ok)
	end, ok := events[3].(BatchCommitEnded)
	require.True(t, ok)
	require.NotEmpty(t, start.BatchID)
	require.Equal(t, start.BatchID, end.BatchID)
	require.Equal(t, "init", start.CommitMessage)
}

func TestNewBatchIDsAreUnique(t *testing.T) {
	a := NewBatch("a", foundation.None[EventContext]())[0].(BatchCommitStarted)
	b := NewBatch("b", foundation.None[EventContext]())[0].(BatchCommitStarted)
	require.NotEqual(t, a.BatchID, b.BatchID)
}

func TestNewBatchAttachesContext(t *testing.T) {
	ctx := NewEventContext("cli", "session-1", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.Equal(t, "2024-03-01T12:00:00Z", ctx.CreatedAt)
	require.NotEmpty(t, ctx.ClientCommandBatchID)

	events := NewBatchWithID("b1", "m", foundation.Some(ctx), ContributionAdded{ID: "x", Key: "k", Value: "v"})
	for _, ev := range events {
		got, ok := ev.Context().Get()
		require.True(t, ok, ev.EventType())
		require.Equal(t, ctx, got)
	}
}
