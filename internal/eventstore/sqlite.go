package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/specreplay/internal/metrics"
	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	mu       sync.RWMutex
	now      func() time.Time
	recorder metrics.Recorder
}

// StoreOption configures a SQLiteStore.
type StoreOption func(*SQLiteStore)

// WithRecorder counts appended events.
func WithRecorder(r metrics.Recorder) StoreOption {
	return func(s *SQLiteStore) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewSQLiteStore creates a new SQLite-based event store.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string, opts ...StoreOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap(ErrDatabaseOpenFailed, err, "")
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: time.Now, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, wrap(ErrInitializeSchemaFailed, err, "")
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rfc_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		spec_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_rfc_events_spec_id ON rfc_events(spec_id, id);
	CREATE INDEX IF NOT EXISTS idx_rfc_events_type ON rfc_events(event_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores events in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, specID string, events []rfc.Event, metadata map[string]string) error {
	if len(events) == 0 {
		return nil
	}

	var metadataJSON []byte
	if metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return wrap(ErrMarshalPayloadFailed, fmt.Errorf("marshal metadata: %w", err), specID)
		}
	}

	payloads := make([][]byte, len(events))
	for i, ev := range events {
		b, err := rfc.Encode(ev)
		if err != nil {
			return wrap(ErrMarshalPayloadFailed, fmt.Errorf("event %d: %w", i, err), specID)
		}
		payloads[i] = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(ErrEventAppendFailed, err, specID)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO rfc_events (spec_id, event_type, timestamp, payload, metadata) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return wrap(ErrEventAppendFailed, err, specID)
	}
	defer func() { _ = stmt.Close() }()

	timestamp := s.now().UnixNano()
	for i, ev := range events {
		if _, err := stmt.ExecContext(ctx, specID, ev.EventType(), timestamp, payloads[i], metadataJSON); err != nil {
			return wrap(ErrEventAppendFailed, fmt.Errorf("insert event %d: %w", i, err), specID)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap(ErrEventAppendFailed, err, specID)
	}
	s.recorder.IncEventsAppended(len(events))
	return nil
}

// Load retrieves all events for a specification in append order.
func (s *SQLiteStore) Load(ctx context.Context, specID string) ([]Event, error) {
	return s.LoadAfter(ctx, specID, 0)
}

// LoadAfter retrieves events for a specification appended after afterID.
func (s *SQLiteStore) LoadAfter(ctx context.Context, specID string, afterID int64) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, spec_id, event_type, timestamp, payload, metadata FROM rfc_events WHERE spec_id = ? AND id > ? ORDER BY id",
		specID, afterID,
	)
	if err != nil {
		return nil, wrap(ErrEventQueryFailed, err, specID)
	}
	defer rows.Close()

	events, err := s.scanEvents(rows)
	if err != nil {
		return nil, wrap(ErrEventScanFailed, err, specID)
	}
	return events, nil
}

// Specs lists the specification ids present in the log, sorted.
func (s *SQLiteStore) Specs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT spec_id FROM rfc_events ORDER BY spec_id")
	if err != nil {
		return nil, wrap(ErrEventQueryFailed, err, "")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap(ErrEventScanFailed, err, "")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrEventScanFailed, err, "")
	}
	return ids, nil
}

func (s *SQLiteStore) scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e BaseEvent
		var timestampNano int64
		var metadataJSON []byte

		err := rows.Scan(&e.EventID, &e.EventSpecID, &e.EventType, &timestampNano, &e.EventPayload, &metadataJSON)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		e.EventTimestamp = time.Unix(0, timestampNano)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.EventMetadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
