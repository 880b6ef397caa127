package rfc

import (
	"fmt"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

var (
	// ErrMalformedEvent classifies JSON that is not a well-formed event envelope.
	ErrMalformedEvent = errors.ValidationError("malformed rfc event").Build()

	// ErrUnknownEvent classifies an envelope whose tag is outside the closed event set.
	ErrUnknownEvent = errors.ValidationError("unknown rfc event variant").Build()
)

// DecodeError reports an event that could not be deserialized. No partial
// event is produced.
type DecodeError struct {
	// Index is the position in the stream, or -1 for a standalone document.
	Index  int
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("event %d: %s", e.Index, msg)
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedEvent}
	}
	return []error{ErrMalformedEvent, e.Err}
}

// UnknownEventError reports an envelope tag that is not one of the five variants.
type UnknownEventError struct {
	Index int
	Tag   string
}

func (e *UnknownEventError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("event %d: unknown event variant %q", e.Index, e.Tag)
	}
	return fmt.Sprintf("unknown event variant %q", e.Tag)
}

func (e *UnknownEventError) Unwrap() error { return ErrUnknownEvent }
