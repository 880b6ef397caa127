package replay

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
	ferrors "git.home.luguber.info/inful/specreplay/internal/foundation/errors"
	"git.home.luguber.info/inful/specreplay/internal/metrics"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

func TestReplayScenarioA(t *testing.T) {
	events := []rfc.Event{
		rfc.BatchCommitStarted{BatchID: "b1", CommitMessage: "init"},
		rfc.APINamed{Name: "Todo API"},
		rfc.GitStateSet{BranchName: "main", CommitID: "abc123"},
		rfc.BatchCommitEnded{BatchID: "b1"},
	}

	spec, err := Replay(events)
	require.NoError(t, err)
	require.Equal(t, foundation.Some("Todo API"), spec.Name)
	require.Equal(t, foundation.Some(GitState{BranchName: "main", CommitID: "abc123"}), spec.Git)
	require.Equal(t, []BatchCommit{{BatchID: "b1", Message: "init", EventIndices: []int{1, 2}}}, spec.Commits)
	require.Equal(t, 4, spec.EventCount)
	require.False(t, spec.Incomplete)
	require.True(t, spec.OpenBatch.IsNone())
}

func TestReplayScenarioBNestedBatch(t *testing.T) {
	events := []rfc.Event{
		rfc.BatchCommitStarted{BatchID: "b1", CommitMessage: "x"},
		rfc.BatchCommitStarted{BatchID: "b2", CommitMessage: "y"},
	}

	spec, err := Replay(events)
	require.Nil(t, spec)
	require.ErrorIs(t, err, ErrNestedBatch)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Equal(t, KindNested, batchErr.Kind)
	require.Equal(t, 1, batchErr.Index)
	require.Equal(t, "b1", batchErr.OpenBatchID)
	require.Equal(t, "b2", batchErr.BatchID)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryReplay))
}

func TestReplayRestartingSameBatchIsNested(t *testing.T) {
	_, err := Replay([]rfc.Event{
		rfc.BatchCommitStarted{BatchID: "b1"},
		rfc.BatchCommitStarted{BatchID: "b1"},
	})
	require.ErrorIs(t, err, ErrNestedBatch)
}

func TestReplayUnopenedBatch(t *testing.T) {
	spec, err := Replay([]rfc.Event{
		rfc.APINamed{Name: "x"},
		rfc.BatchCommitEnded{BatchID: "x"},
	})
	require.Nil(t, spec)
	require.ErrorIs(t, err, ErrUnopenedBatch)
	require.Contains(t, err.Error(), "event 1")
}

func TestReplayMismatchedBatch(t *testing.T) {
	_, err := Replay([]rfc.Event{
		rfc.BatchCommitStarted{BatchID: "b1"},
		rfc.BatchCommitEnded{BatchID: "b2"},
	})
	require.ErrorIs(t, err, ErrMismatchedBatch)
	require.NotErrorIs(t, err, ErrUnopenedBatch)
}

func TestReplayUnclosedBatch(t *testing.T) {
	spec, err := Replay([]rfc.Event{
		rfc.BatchCommitStarted{BatchID: "b1", CommitMessage: "wip"},
		rfc.APINamed{Name: "x"},
	})
	require.Nil(t, spec)
	require.ErrorIs(t, err, ErrUnclosedBatch)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Equal(t, 2, batchErr.Index)
	require.Equal(t, "b1", batchErr.OpenBatchID)
}

func TestReplayRejectsEmptyIdentifiers(t *testing.T) {
	cases := map[string]rfc.Event{
		"batchId on start": rfc.BatchCommitStarted{CommitMessage: "m"},
		"batchId on end":   rfc.BatchCommitEnded{},
		"contribution id":  rfc.ContributionAdded{Key: "k", Value: "v"},
		"contribution key": rfc.ContributionAdded{ID: "e", Value: "v"},
		"nil event":        nil,
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Replay([]rfc.Event{ev})
			require.ErrorIs(t, err, ErrInvalidEvent)
			var invalid *InvalidEventError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, 0, invalid.Index)
		})
	}
}

func TestReplayNamesUnsupportedEventValues(t *testing.T) {
	_, err := Replay([]rfc.Event{rfc.APINamed{Name: "a"}, &rfc.APINamed{Name: "b"}})
	require.ErrorIs(t, err, ErrInvalidEvent)
	var invalid *InvalidEventError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, 1, invalid.Index)
	require.Equal(t, "*rfc.APINamed", invalid.Unsupported)
	require.Contains(t, err.Error(), "*rfc.APINamed")
	require.NotContains(t, err.Error(), "nil event")

	_, err = Replay([]rfc.Event{nil})
	require.ErrorContains(t, err, "nil event")
}

func TestEngineIsPoisonedAfterError(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Apply(rfc.APINamed{Name: "a"}))
	first := e.Apply(rfc.BatchCommitEnded{BatchID: "nope"})
	require.Error(t, first)

	require.Equal(t, first, e.Apply(rfc.APINamed{Name: "b"}))
	require.Equal(t, first, e.Err())

	spec, err := e.Finish()
	require.Nil(t, spec)
	require.Equal(t, first, err)
}

func TestContributionsUpsertByIDAndKey(t *testing.T) {
	spec, err := Replay([]rfc.Event{
		rfc.ContributionAdded{ID: "todo", Key: "purpose", Value: "v1"},
		rfc.ContributionAdded{ID: "todo", Key: "owner", Value: "team"},
		rfc.ContributionAdded{ID: "todo", Key: "purpose", Value: "v2"},
		rfc.ContributionAdded{ID: "user", Key: "purpose", Value: "u"},
	})
	require.NoError(t, err)

	v, ok := spec.Contribution("todo", "purpose")
	require.True(t, ok)
	require.Equal(t, "v2", v)
	require.Len(t, spec.Contributions["todo"], 2)

	_, ok = spec.Contribution("missing", "purpose")
	require.False(t, ok)
	require.Empty(t, spec.Commits)
}

func TestMultipleBatchesAndLooseEvents(t *testing.T) {
	events := []rfc.Event{
		rfc.APINamed{Name: "a"},
		rfc.BatchCommitStarted{BatchID: "b1", CommitMessage: "one"},
		rfc.ContributionAdded{ID: "e", Key: "k", Value: "v"},
		rfc.BatchCommitEnded{BatchID: "b1"},
		rfc.GitStateSet{BranchName: "main", CommitID: "1"},
		rfc.BatchCommitStarted{BatchID: "b2", CommitMessage: "empty"},
		rfc.BatchCommitEnded{BatchID: "b2"},
		rfc.BatchCommitStarted{BatchID: "b3", CommitMessage: "three"},
		rfc.APINamed{Name: "b"},
		rfc.GitStateSet{BranchName: "main", CommitID: "2"},
		rfc.BatchCommitEnded{BatchID: "b3"},
	}
	spec, err := Replay(events)
	require.NoError(t, err)
	require.Equal(t, []BatchCommit{
		{BatchID: "b1", Message: "one", EventIndices: []int{2}},
		{BatchID: "b2", Message: "empty", EventIndices: []int{}},
		{BatchID: "b3", Message: "three", EventIndices: []int{8, 9}},
	}, spec.Commits)
	require.Equal(t, "b", spec.Name.Unwrap())
	require.Equal(t, "2", spec.Git.Unwrap().CommitID)
}

func TestSnapshotMarksOpenBatchIncomplete(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Apply(rfc.BatchCommitStarted{BatchID: "b1", CommitMessage: "m"}))
	require.NoError(t, e.Apply(rfc.APINamed{Name: "partial"}))

	snap := e.Snapshot()
	require.True(t, snap.Incomplete)
	require.Equal(t, foundation.Some("b1"), snap.OpenBatch)
	require.Equal(t, "partial", snap.Name.Unwrap())
	require.Empty(t, snap.Commits)

	require.NoError(t, e.Apply(rfc.BatchCommitEnded{BatchID: "b1"}))
	spec, err := e.Finish()
	require.NoError(t, err)
	require.False(t, spec.Incomplete)
	require.Len(t, spec.Commits, 1)
}

func TestSnapshotIsIsolatedFromEngine(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Apply(rfc.ContributionAdded{ID: "e", Key: "k", Value: "v1"}))
	snap := e.Snapshot()
	snap.Contributions["e"]["k"] = "mutated"

	require.NoError(t, e.Apply(rfc.APINamed{Name: "n"}))
	v, _ := e.Snapshot().Contribution("e", "k")
	require.Equal(t, "v1", v)
}

func TestReplayN(t *testing.T) {
	events := []rfc.Event{
		rfc.BatchCommitStarted{BatchID: "b1", CommitMessage: "init"},
		rfc.APINamed{Name: "Todo API"},
		rfc.GitStateSet{BranchName: "main", CommitID: "abc123"},
		rfc.BatchCommitEnded{BatchID: "b1"},
		rfc.APINamed{Name: "Renamed"},
	}

	spec, err := ReplayN(events, 2)
	require.NoError(t, err)
	require.True(t, spec.Incomplete)
	require.Equal(t, "b1", spec.OpenBatch.Unwrap())
	require.Equal(t, 2, spec.EventCount)

	spec, err = ReplayN(events, 4)
	require.NoError(t, err)
	require.False(t, spec.Incomplete)
	require.Equal(t, "Todo API", spec.Name.Unwrap())

	spec, err = ReplayN(events, 100)
	require.NoError(t, err)
	require.Equal(t, "Renamed", spec.Name.Unwrap())

	spec, err = ReplayN(events, -1)
	require.NoError(t, err)
	require.Equal(t, 0, spec.EventCount)

	_, err = ReplayN([]rfc.Event{rfc.BatchCommitEnded{BatchID: "x"}}, 1)
	require.ErrorIs(t, err, ErrUnopenedBatch)
}

func TestEmptyStream(t *testing.T) {
	spec, err := Replay(nil)
	require.NoError(t, err)
	require.True(t, spec.Name.IsNone())
	require.True(t, spec.Git.IsNone())
	require.Empty(t, spec.Contributions)
	require.Empty(t, spec.Commits)
}

func TestSpecificationJSON(t *testing.T) {
	spec, err := Replay([]rfc.Event{
		rfc.BatchCommitStarted{BatchID: "b1", CommitMessage: "init"},
		rfc.APINamed{Name: "Todo API"},
		rfc.BatchCommitEnded{BatchID: "b1"},
	})
	require.NoError(t, err)

	b, err := json.Marshal(spec)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"name": "Todo API",
		"git": null,
		"contributions": {},
		"commits": [{"batchId": "b1", "message": "init", "eventIndices": [1]}],
		"eventCount": 3,
		"incomplete": false,
		"openBatch": null
	}`, string(b))

	canonical, err := spec.Canonical()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(canonical), `{"commits":`))

	digest, err := spec.Digest()
	require.NoError(t, err)
	require.Len(t, digest, 64)
}

type countingRecorder struct {
	metrics.NoopRecorder
	applied  int
	batches  int
	failures []string
}

func (c *countingRecorder) IncEventApplied(string)       { c.applied++ }
func (c *countingRecorder) IncBatchCommitted()           { c.batches++ }
func (c *countingRecorder) IncReplayFailure(kind string) { c.failures = append(c.failures, kind) }

func TestEngineReportsToRecorder(t *testing.T) {
	rec := &countingRecorder{}
	_, err := Replay(rfc.NewBatchWithID("b1", "m", foundation.None[rfc.EventContext](), rfc.APINamed{Name: "x"}), WithRecorder(rec))
	require.NoError(t, err)
	require.Equal(t, 3, rec.applied)
	require.Equal(t, 1, rec.batches)

	_, err = Replay([]rfc.Event{rfc.BatchCommitStarted{BatchID: "a"}}, WithRecorder(rec))
	require.Error(t, err)
	require.Equal(t, []string{"unclosed"}, rec.failures)
}
