package rfc

import (
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

// NewEventContext returns provenance for a client session. The command batch
// id is freshly generated.
func NewEventContext(clientID, sessionID string, at time.Time) EventContext {
	return EventContext{
		ClientID:             clientID,
		ClientSessionID:      sessionID,
		ClientCommandBatchID: uuid.NewString(),
		CreatedAt:            at.UTC().Format(time.RFC3339Nano),
	}
}

// NewBatch wraps events in a BatchCommitStarted/BatchCommitEnded pair with a
// new batch id. When ctx is set it is attached to every event, including the
// markers.
func NewBatch(message string, ctx foundation.Option[EventContext], events ...Event) []Event {
	return NewBatchWithID(uuid.NewString(), message, ctx, events...)
}

// NewBatchWithID is NewBatch with a caller-chosen batch id.
func NewBatchWithID(batchID, message string, ctx foundation.Option[EventContext], events ...Event) []Event {
	out := make([]Event, 0, len(events)+2)
	out = append(out, BatchCommitStarted{BatchID: batchID, CommitMessage: message, EventContext: ctx})
	for _, e := range events {
		if c, ok := ctx.Get(); ok {
			e = WithContext(e, c)
		}
		out = append(out, e)
	}
	out = append(out, BatchCommitEnded{BatchID: batchID, EventContext: ctx})
	return out
}
