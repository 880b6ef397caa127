package eventstore

import (
	"context"

	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// Store is an append-only log of RFC events, partitioned by specification.
// Stream order is append order.
type Store interface {
	// Append stores events for specID atomically: all of them or none.
	Append(ctx context.Context, specID string, events []rfc.Event, metadata map[string]string) error

	// Load retrieves the full stream for specID.
	Load(ctx context.Context, specID string) ([]Event, error)

	// LoadAfter retrieves the events for specID with an ID greater than afterID.
	LoadAfter(ctx context.Context, specID string, afterID int64) ([]Event, error)

	// Specs lists the specification ids present in the log.
	Specs(ctx context.Context) ([]string, error)

	// Close closes the store and releases resources.
	Close() error
}
