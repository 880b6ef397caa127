package eventstore

import (
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
	"git.home.luguber.info/inful/specreplay/internal/metrics"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

const testSpecID = "todo-api"

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func scenarioA() []rfc.Event {
	return rfc.NewBatchWithID("b1", "init", foundation.None[rfc.EventContext](),
		rfc.APINamed{Name: "Todo API"},
		rfc.GitStateSet{BranchName: "main", CommitID: "abc123"},
	)
}

func TestEventStoreAppendAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	err := store.Append(ctx, testSpecID, scenarioA(), map[string]string{"source": "test"})
	if err != nil {
		t.Fatalf("failed to append events: %v", err)
	}

	events, err := store.Load(ctx, testSpecID)
	if err != nil {
		t.Fatalf("failed to load events: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	wantTypes := []string{rfc.TypeBatchCommitStarted, rfc.TypeAPINamed, rfc.TypeGitStateSet, rfc.TypeBatchCommitEnded}
	for i, e := range events {
		if e.SpecID() != testSpecID {
			t.Errorf("event %d: expected spec_id %s, got %s", i, testSpecID, e.SpecID())
		}
		if e.Type() != wantTypes[i] {
			t.Errorf("event %d: expected type %s, got %s", i, wantTypes[i], e.Type())
		}
		if e.Metadata()["source"] != "test" {
			t.Errorf("event %d: expected metadata source=test, got %v", i, e.Metadata())
		}
		if !e.Timestamp().Equal(fixed) {
			t.Errorf("event %d: expected timestamp %v, got %v", i, fixed, e.Timestamp())
		}
		if i > 0 && e.ID() <= events[i-1].ID() {
			t.Errorf("event ids not increasing: %d after %d", e.ID(), events[i-1].ID())
		}
	}

	decoded, err := Decode(events)
	if err != nil {
		t.Fatalf("failed to decode events: %v", err)
	}
	if decoded[1] != (rfc.APINamed{Name: "Todo API"}) {
		t.Errorf("unexpected decoded event: %#v", decoded[1])
	}
}

func TestEventStoreAppendIsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	err := store.Append(ctx, testSpecID, []rfc.Event{rfc.APINamed{Name: "a"}, nil}, nil)
	if !errors.Is(err, ErrMarshalPayloadFailed) {
		t.Fatalf("expected ErrMarshalPayloadFailed, got %v", err)
	}

	events, err := store.Load(ctx, testSpecID)
	if err != nil {
		t.Fatalf("failed to load events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events after failed append, got %d", len(events))
	}
}

func TestEventStoreAppendEmptyIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.Append(t.Context(), testSpecID, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type appendCounter struct {
	metrics.NoopRecorder
	appended int
}

func (a *appendCounter) IncEventsAppended(n int) { a.appended += n }

func TestEventStoreRecordsAppendedEvents(t *testing.T) {
	rec := &appendCounter{}
	store, err := NewSQLiteStore(":memory:", WithRecorder(rec))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	events := scenarioA()
	if err := store.Append(t.Context(), testSpecID, events, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(t.Context(), testSpecID, nil, nil); err != nil {
		t.Fatalf("empty append: %v", err)
	}
	if rec.appended != len(events) {
		t.Errorf("appended = %d, want %d", rec.appended, len(events))
	}
}

func TestEventStoreLoadAfter(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	if err := store.Append(ctx, testSpecID, []rfc.Event{rfc.APINamed{Name: "a"}, rfc.APINamed{Name: "b"}}, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	all, err := store.Load(ctx, testSpecID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rest, err := store.LoadAfter(ctx, testSpecID, all[0].ID())
	if err != nil {
		t.Fatalf("load after: %v", err)
	}
	if len(rest) != 1 || rest[0].ID() != all[1].ID() {
		t.Fatalf("expected only the second event, got %d events", len(rest))
	}
}

func TestEventStoreMultipleSpecs(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	for _, id := range []string{"spec-b", "spec-a", "spec-b"} {
		if err := store.Append(ctx, id, []rfc.Event{rfc.APINamed{Name: id}}, nil); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	b, err := store.Load(ctx, "spec-b")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(b) != 2 {
		t.Errorf("expected 2 events for spec-b, got %d", len(b))
	}

	ids, err := store.Specs(ctx)
	if err != nil {
		t.Fatalf("specs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "spec-a" || ids[1] != "spec-b" {
		t.Errorf("unexpected spec ids: %v", ids)
	}
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	_, err := Decode([]Event{&BaseEvent{EventSpecID: testSpecID, EventPayload: []byte(`{"nope":{}}`)}})
	if !errors.Is(err, ErrUnmarshalPayloadFailed) {
		t.Fatalf("expected ErrUnmarshalPayloadFailed, got %v", err)
	}
	if !errors.Is(err, rfc.ErrUnknownEvent) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}
