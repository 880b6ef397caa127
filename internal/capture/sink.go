package capture

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
	"git.home.luguber.info/inful/specreplay/internal/interaction"
)

// Sink receives accepted interactions.
type Sink interface {
	Write(ctx context.Context, h *interaction.HTTPInteraction) error
}

// JSONLSink writes one interaction per line.
type JSONLSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewJSONLSink writes to w. Closing the sink does not close w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w}
}

// OpenJSONLSink appends to the file at path, or writes to stdout for "-".
func OpenJSONLSink(path string) (*JSONLSink, error) {
	if path == "-" {
		return NewJSONLSink(os.Stdout), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open capture output").
			WithContext("path", path).
			Build()
	}
	return &JSONLSink{w: f, closer: f}, nil
}

func (s *JSONLSink) Write(_ context.Context, h *interaction.HTTPInteraction) error {
	b, err := json.Marshal(h)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode interaction").Build()
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write interaction").Build()
	}
	return nil
}

// Close closes the underlying file when the sink opened it.
func (s *JSONLSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// MemorySink keeps accepted interactions in memory.
type MemorySink struct {
	mu    sync.Mutex
	items []*interaction.HTTPInteraction
}

func (m *MemorySink) Write(_ context.Context, h *interaction.HTTPInteraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, h)
	return nil
}

// Interactions returns the stored interactions in arrival order.
func (m *MemorySink) Interactions() []*interaction.HTTPInteraction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*interaction.HTTPInteraction, len(m.items))
	copy(out, m.items)
	return out
}

// MultiSink writes to every sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, h *interaction.HTTPInteraction) error {
	for _, s := range m {
		if err := s.Write(ctx, h); err != nil {
			return err
		}
	}
	return nil
}
