package eventstore

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"git.home.luguber.info/inful/specreplay/internal/replay"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

func TestProjection_RebuildFromStore(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	if err := store.Append(ctx, testSpecID, scenarioA(), nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	p := NewProjection(store, testSpecID)
	if err := p.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	spec, err := p.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if spec.Name.Unwrap() != "Todo API" {
		t.Errorf("expected name 'Todo API', got %q", spec.Name.Unwrap())
	}
	if len(spec.Commits) != 1 || fmt.Sprint(spec.Commits[0].EventIndices) != "[1 2]" {
		t.Errorf("unexpected commits: %+v", spec.Commits)
	}
	if p.LastSync().IsZero() {
		t.Error("expected last sync to be set")
	}
}

func TestProjection_RefreshAppliesNewEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	if err := store.Append(ctx, testSpecID, scenarioA(), nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	p := NewProjection(store, testSpecID)
	if err := p.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if err := store.Append(ctx, testSpecID, []rfc.Event{rfc.APINamed{Name: "Tasks API"}}, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := p.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	spec, err := p.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if spec.Name.Unwrap() != "Tasks API" {
		t.Errorf("expected renamed spec, got %q", spec.Name.Unwrap())
	}
	if spec.EventCount != 5 {
		t.Errorf("expected 5 events folded once each, got %d", spec.EventCount)
	}
}

func TestProjection_OpenBatchIsIncomplete(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	events := scenarioA()
	if err := store.Append(ctx, testSpecID, events[:2], nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	p := NewProjection(store, testSpecID)
	if err := p.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	spec, err := p.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !spec.Incomplete || spec.OpenBatch.Unwrap() != "b1" {
		t.Errorf("expected incomplete snapshot with open batch b1, got %+v", spec)
	}
}

func TestProjection_InvalidStream(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	if err := store.Append(ctx, testSpecID, []rfc.Event{rfc.BatchCommitEnded{BatchID: "x"}}, nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	p := NewProjection(store, testSpecID)
	err := p.Rebuild(ctx)
	if !errors.Is(err, replay.ErrUnopenedBatch) {
		t.Fatalf("expected ErrUnopenedBatch, got %v", err)
	}
	if _, err := p.Snapshot(); !errors.Is(err, replay.ErrUnopenedBatch) {
		t.Fatalf("expected snapshot to report the stream error, got %v", err)
	}
}

func TestProjections_IndependentSpecsConcurrently(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	const specs = 8
	for i := range specs {
		id := fmt.Sprintf("spec-%d", i)
		if err := store.Append(ctx, id, []rfc.Event{rfc.APINamed{Name: id}}, nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	registry := NewProjections(store)
	var wg sync.WaitGroup
	errs := make(chan error, specs*2)
	for i := range specs * 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("spec-%d", i%specs)
			p, err := registry.Get(ctx, id)
			if err != nil {
				errs <- err
				return
			}
			spec, err := p.Snapshot()
			if err != nil {
				errs <- err
				return
			}
			if spec.Name.Unwrap() != id {
				errs <- fmt.Errorf("spec %s has name %q", id, spec.Name.Unwrap())
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestProjections_RebuildAll(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	for _, id := range []string{"a", "b"} {
		if err := store.Append(ctx, id, []rfc.Event{rfc.APINamed{Name: id}}, nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	registry := NewProjections(store)
	if err := registry.RebuildAll(ctx); err != nil {
		t.Fatalf("rebuild all: %v", err)
	}
	p, err := registry.Get(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.SpecID() != "b" {
		t.Errorf("expected projection for b, got %s", p.SpecID())
	}
}

func TestProjections_UnknownSpecsAreNotCached(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	registry := NewProjections(store)

	for i := 0; i < 100; i++ {
		p, err := registry.Get(ctx, fmt.Sprintf("missing-%d", i))
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		spec, err := p.Snapshot()
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if spec.EventCount != 0 {
			t.Fatalf("expected empty specification, got %d events", spec.EventCount)
		}
	}
	if n := registry.Len(); n != 0 {
		t.Fatalf("expected no cached projections, got %d", n)
	}

	if err := store.Append(ctx, "missing-7", []rfc.Event{rfc.APINamed{Name: "late"}}, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	p, err := registry.Get(ctx, "missing-7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	spec, _ := p.Snapshot()
	if spec.Name.UnwrapOr("") != "late" {
		t.Errorf("expected name late, got %v", spec.Name)
	}
	if n := registry.Len(); n != 1 {
		t.Errorf("expected one cached projection, got %d", n)
	}
}
