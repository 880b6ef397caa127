// Package eventstore persists RFC event streams and keeps specifications
// projected from them.
package eventstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/replay"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// Projection maintains the specification folded from one stream of the store.
// It owns its replay engine exclusively; the mutex serializes every fold.
type Projection struct {
	mu       sync.Mutex
	store    Store
	specID   string
	opts     []replay.EngineOption
	engine   *replay.Engine
	lastID   int64
	stored   int
	lastSync time.Time
}

// NewProjection creates a projection of specID backed by store.
func NewProjection(store Store, specID string, opts ...replay.EngineOption) *Projection {
	return &Projection{
		store:  store,
		specID: specID,
		opts:   opts,
		engine: replay.NewEngine(opts...),
	}
}

// SpecID returns the stream this projection folds.
func (p *Projection) SpecID() string { return p.specID }

// Rebuild reconstructs the projection from the full stream.
func (p *Projection) Rebuild(ctx context.Context) error {
	events, err := p.store.Load(ctx, p.specID)
	if err != nil {
		return wrap(ErrProjectionRebuildFailed, err, p.specID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.engine = replay.NewEngine(p.opts...)
	p.lastID = 0
	p.stored = len(events)
	return p.applyStoredLocked(events)
}

// Refresh folds events appended since the last Rebuild or Refresh.
func (p *Projection) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	events, err := p.store.LoadAfter(ctx, p.specID, p.lastID)
	if err != nil {
		return err
	}
	p.stored += len(events)
	return p.applyStoredLocked(events)
}

func (p *Projection) applyStoredLocked(events []Event) error {
	for _, stored := range events {
		ev, err := rfc.Decode(stored.Payload())
		if err != nil {
			return wrap(ErrUnmarshalPayloadFailed, err, p.specID)
		}
		if err := p.engine.Apply(ev); err != nil {
			slog.Warn("Projection stopped on invalid stream",
				logfields.SpecID(p.specID),
				logfields.EventType(stored.Type()),
				logfields.Error(err))
			return err
		}
		p.lastID = stored.ID()
	}
	p.lastSync = time.Now()
	return nil
}

// Apply folds ev into the projection without storing it. Used for real-time
// updates when events are appended through another path.
func (p *Projection) Apply(ev rfc.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Apply(ev)
}

// Snapshot returns the current specification. An open batch is reported as
// Incomplete. If the stream is invalid the error that stopped the fold is
// returned instead.
func (p *Projection) Snapshot() (*replay.Specification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.engine.Err(); err != nil {
		return nil, err
	}
	return p.engine.Snapshot(), nil
}

func (p *Projection) storedEvents() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored
}

// LastSync returns when the projection last read from the store.
func (p *Projection) LastSync() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSync
}

// Projections holds one independent projection per specification, so
// different specifications can be folded concurrently.
type Projections struct {
	mu          sync.RWMutex
	store       Store
	opts        []replay.EngineOption
	projections map[string]*Projection
}

// NewProjections creates an empty registry backed by store.
func NewProjections(store Store, opts ...replay.EngineOption) *Projections {
	return &Projections{
		store:       store,
		opts:        opts,
		projections: make(map[string]*Projection),
	}
}

// Get returns the projection for specID, rebuilding it from the store on
// first use and refreshing it otherwise. Only projections of streams that
// have stored events are kept in the registry.
func (r *Projections) Get(ctx context.Context, specID string) (*Projection, error) {
	r.mu.RLock()
	p, ok := r.projections[specID]
	r.mu.RUnlock()
	if ok {
		return p, p.Refresh(ctx)
	}

	p = NewProjection(r.store, specID, r.opts...)
	err := p.Rebuild(ctx)
	if p.storedEvents() == 0 {
		return p, err
	}

	r.mu.Lock()
	if existing, ok := r.projections[specID]; ok {
		r.mu.Unlock()
		return existing, existing.Refresh(ctx)
	}
	r.projections[specID] = p
	r.mu.Unlock()
	return p, err
}

// Len returns the number of cached projections.
func (r *Projections) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projections)
}

// RebuildAll rebuilds a projection for every specification in the store.
func (r *Projections) RebuildAll(ctx context.Context) error {
	ids, err := r.store.Specs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p := NewProjection(r.store, id, r.opts...)
		if err := p.Rebuild(ctx); err != nil {
			return err
		}
		r.mu.Lock()
		r.projections[id] = p
		r.mu.Unlock()
	}
	return nil
}
