package eventstore

import (
	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.EventStoreError("could not open event store database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.EventStoreError("failed to initialize event store schema").Build()

	// ErrEventAppendFailed indicates appending events failed; nothing was stored.
	ErrEventAppendFailed = errors.EventStoreError("failed to append events to store").Build()

	// ErrEventQueryFailed indicates querying events failed.
	ErrEventQueryFailed = errors.EventStoreError("failed to query events from store").Build()

	// ErrEventScanFailed indicates scanning event rows failed.
	ErrEventScanFailed = errors.EventStoreError("failed to scan event rows").Build()

	// ErrMarshalPayloadFailed indicates an event could not be encoded for storage.
	ErrMarshalPayloadFailed = errors.EventStoreError("failed to marshal event payload").Build()

	// ErrUnmarshalPayloadFailed indicates a stored payload is not a valid event.
	ErrUnmarshalPayloadFailed = errors.EventStoreError("failed to unmarshal event payload").Build()

	// ErrProjectionRebuildFailed indicates rebuilding a projection failed.
	ErrProjectionRebuildFailed = errors.EventStoreError("failed to rebuild projection").Build()
)

// wrap classifies err under sentinel so errors.Is(result, sentinel) holds.
func wrap(sentinel *errors.ClassifiedError, err error, specID string) error {
	return errors.WrapError(err, sentinel.Category(), sentinel.Message()).
		WithSeverity(sentinel.Severity()).
		WithContext("spec_id", specID).
		Build()
}
