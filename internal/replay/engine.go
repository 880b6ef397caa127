package replay

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/metrics"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

type openBatch struct {
	id      string
	message string
	start   int
	members []int
}

// Engine folds RFC events into a Specification one event at a time.
// An Engine owns the state of a single stream and is not safe for
// concurrent use.
type Engine struct {
	spec     *Specification
	open     *openBatch
	next     int
	err      error
	recorder metrics.Recorder
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRecorder reports applied events, commits and failures to r.
func WithRecorder(r metrics.Recorder) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger used for debug output of commits and failures.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an engine in the idle state over an empty specification.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		spec:     newSpecification(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply folds the next event of the stream. After the first error the engine
// is poisoned and every later call returns that error.
func (e *Engine) Apply(ev rfc.Event) error {
	if e.err != nil {
		return e.err
	}
	if err := e.apply(ev); err != nil {
		e.fail(err)
		return err
	}
	e.next++
	e.spec.EventCount = e.next
	e.recorder.IncEventApplied(ev.EventType())
	return nil
}

func (e *Engine) apply(ev rfc.Event) error {
	idx := e.next
	switch v := ev.(type) {
	case rfc.BatchCommitStarted:
		if v.BatchID == "" {
			return &InvalidEventError{Index: idx, EventType: v.EventType(), Field: "batchId"}
		}
		if e.open != nil {
			return &BatchError{Kind: KindNested, Index: idx, OpenBatchID: e.open.id, BatchID: v.BatchID}
		}
		e.open = &openBatch{id: v.BatchID, message: v.CommitMessage, start: idx, members: []int{}}

	case rfc.BatchCommitEnded:
		if v.BatchID == "" {
			return &InvalidEventError{Index: idx, EventType: v.EventType(), Field: "batchId"}
		}
		if e.open == nil {
			return &BatchError{Kind: KindUnopened, Index: idx, BatchID: v.BatchID}
		}
		if e.open.id != v.BatchID {
			return &BatchError{Kind: KindMismatched, Index: idx, OpenBatchID: e.open.id, BatchID: v.BatchID}
		}
		e.spec.Commits = append(e.spec.Commits, BatchCommit{
			BatchID:      e.open.id,
			Message:      e.open.message,
			EventIndices: e.open.members,
		})
		e.logger.Debug("Batch committed",
			logfields.BatchID(e.open.id),
			logfields.EventIndex(e.open.start),
			logfields.EventCount(len(e.open.members)))
		e.open = nil
		e.recorder.IncBatchCommitted()

	case rfc.ContributionAdded:
		if v.ID == "" {
			return &InvalidEventError{Index: idx, EventType: v.EventType(), Field: "id"}
		}
		if v.Key == "" {
			return &InvalidEventError{Index: idx, EventType: v.EventType(), Field: "key"}
		}
		byKey, ok := e.spec.Contributions[v.ID]
		if !ok {
			byKey = map[string]string{}
			e.spec.Contributions[v.ID] = byKey
		}
		byKey[v.Key] = v.Value
		e.recordMember(idx)

	case rfc.APINamed:
		e.spec.Name = foundation.Some(v.Name)
		e.recordMember(idx)

	case rfc.GitStateSet:
		e.spec.Git = foundation.Some(GitState{BranchName: v.BranchName, CommitID: v.CommitID})
		e.recordMember(idx)

	default:
		return &InvalidEventError{Index: idx, Unsupported: fmt.Sprintf("%T", ev)}
	}
	return nil
}

func (e *Engine) recordMember(idx int) {
	if e.open != nil {
		e.open.members = append(e.open.members, idx)
	}
}

func (e *Engine) fail(err error) {
	e.err = err
	e.recorder.IncReplayFailure(failureKind(err))
	e.logger.Debug("Replay failed", logfields.EventIndex(e.next), logfields.Error(err))
}

// Err returns the error that poisoned the engine, if any.
func (e *Engine) Err() error {
	return e.err
}

// Snapshot returns a copy of the current state. It never fails: when a batch
// is open the result is marked Incomplete and names the open batch.
func (e *Engine) Snapshot() *Specification {
	s := e.spec.Clone()
	if e.open != nil {
		s.Incomplete = true
		s.OpenBatch = foundation.Some(e.open.id)
	}
	return s
}

// Finish ends the stream. A batch still open at this point is an
// UnclosedBatch error; any earlier error is returned as well. On error no
// specification is returned.
func (e *Engine) Finish() (*Specification, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.open != nil {
		err := &BatchError{Kind: KindUnclosed, Index: e.next, OpenBatchID: e.open.id}
		e.fail(err)
		return nil, err
	}
	return e.Snapshot(), nil
}

// Replay folds events from a fresh engine and finishes the stream.
func Replay(events []rfc.Event, opts ...EngineOption) (*Specification, error) {
	e := NewEngine(opts...)
	start := time.Now()
	for _, ev := range events {
		if err := e.Apply(ev); err != nil {
			return nil, err
		}
	}
	spec, err := e.Finish()
	if err != nil {
		return nil, err
	}
	e.recorder.ObserveReplayDuration(time.Since(start))
	return spec, nil
}

// ReplayN folds at most the first n events and returns a snapshot at that
// point. A batch left open at the cut is reported through Incomplete, not as
// an error; integrity errors before the cut still fail.
func ReplayN(events []rfc.Event, n int, opts ...EngineOption) (*Specification, error) {
	if n < 0 {
		n = 0
	}
	if n > len(events) {
		n = len(events)
	}
	e := NewEngine(opts...)
	for _, ev := range events[:n] {
		if err := e.Apply(ev); err != nil {
			return nil, err
		}
	}
	return e.Snapshot(), nil
}
