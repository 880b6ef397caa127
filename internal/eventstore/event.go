package eventstore

import (
	"time"

	"git.home.luguber.info/inful/specreplay/internal/rfc"
)

// Event is one stored RFC event with its log position.
type Event interface {
	// ID returns the log position. IDs increase in append order.
	ID() int64
	// SpecID returns the specification stream this event belongs to.
	SpecID() string
	// Type returns the RFC event type name.
	Type() string
	// Timestamp returns when the event was appended.
	Timestamp() time.Time
	// Payload returns the event's wire envelope.
	Payload() []byte
	// Metadata returns optional append metadata.
	Metadata() map[string]string
}

// BaseEvent provides a default implementation of Event.
type BaseEvent struct {
	EventID        int64
	EventSpecID    string
	EventType      string
	EventTimestamp time.Time
	EventPayload   []byte
	EventMetadata  map[string]string
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) SpecID() string              { return e.EventSpecID }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }

// Decode converts stored events back to RFC events, preserving order.
func Decode(events []Event) ([]rfc.Event, error) {
	out := make([]rfc.Event, 0, len(events))
	for _, e := range events {
		ev, err := rfc.Decode(e.Payload())
		if err != nil {
			return nil, wrap(ErrUnmarshalPayloadFailed, err, e.SpecID())
		}
		out = append(out, ev)
	}
	return out, nil
}
