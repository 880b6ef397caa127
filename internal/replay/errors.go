package replay

import (
	"fmt"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

// BatchErrorKind identifies which batch pairing rule was violated.
type BatchErrorKind string

const (
	KindNested     BatchErrorKind = "nested"
	KindMismatched BatchErrorKind = "mismatched"
	KindUnopened   BatchErrorKind = "unopened"
	KindUnclosed   BatchErrorKind = "unclosed"
)

// Sentinels for errors.Is; every BatchError unwraps to the one matching its Kind.
var (
	ErrNestedBatch     = errors.ReplayError("batch commit started while another batch is open").Build()
	ErrMismatchedBatch = errors.ReplayError("batch commit ended with a different batch id").Build()
	ErrUnopenedBatch   = errors.ReplayError("batch commit ended without an open batch").Build()
	ErrUnclosedBatch   = errors.ReplayError("event stream ended with an open batch").Build()
	ErrInvalidEvent    = errors.ReplayError("invalid rfc event").Build()
)

// BatchError is a batch integrity violation. It is fatal for the replay.
type BatchError struct {
	Kind BatchErrorKind
	// Index is the stream position of the offending event, or the stream
	// length for KindUnclosed.
	Index int
	// OpenBatchID is the batch open at the time of the error, if any.
	OpenBatchID string
	// BatchID is the id carried by the offending event.
	BatchID string
}

func (e *BatchError) Error() string {
	switch e.Kind {
	case KindNested:
		return fmt.Sprintf("event %d: batch %q started while batch %q is open", e.Index, e.BatchID, e.OpenBatchID)
	case KindMismatched:
		return fmt.Sprintf("event %d: batch %q ended while batch %q is open", e.Index, e.BatchID, e.OpenBatchID)
	case KindUnopened:
		return fmt.Sprintf("event %d: batch %q ended but no batch is open", e.Index, e.BatchID)
	case KindUnclosed:
		return fmt.Sprintf("stream ended after %d events with batch %q still open", e.Index, e.OpenBatchID)
	default:
		return fmt.Sprintf("event %d: batch error %s", e.Index, e.Kind)
	}
}

func (e *BatchError) Unwrap() error {
	switch e.Kind {
	case KindNested:
		return ErrNestedBatch
	case KindMismatched:
		return ErrMismatchedBatch
	case KindUnopened:
		return ErrUnopenedBatch
	case KindUnclosed:
		return ErrUnclosedBatch
	default:
		return nil
	}
}

// InvalidEventError reports an event whose identifying field is empty, or a
// value the engine cannot fold. Unsupported holds the Go type of such a value
// (pointer variants, nil).
type InvalidEventError struct {
	Index       int
	EventType   string
	Field       string
	Unsupported string
}

func (e *InvalidEventError) Error() string {
	if e.Unsupported == "<nil>" {
		return fmt.Sprintf("event %d: nil event", e.Index)
	}
	if e.Unsupported != "" {
		return fmt.Sprintf("event %d: unsupported event value of type %s", e.Index, e.Unsupported)
	}
	return fmt.Sprintf("event %d: %s has empty %s", e.Index, e.EventType, e.Field)
}

func (e *InvalidEventError) Unwrap() error { return ErrInvalidEvent }

func failureKind(err error) string {
	switch e := err.(type) {
	case *BatchError:
		return string(e.Kind)
	case *InvalidEventError:
		return "invalid"
	default:
		return "unknown"
	}
}
