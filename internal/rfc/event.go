// Package rfc defines the closed set of change events that make up an API
// specification's history, and their JSON wire form.
package rfc

import (
	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

// Event type discriminants, stable across releases; used for logging and as
// the event_type column of the event log.
const (
	TypeContributionAdded  = "ContributionAdded"
	TypeAPINamed           = "APINamed"
	TypeGitStateSet        = "GitStateSet"
	TypeBatchCommitStarted = "BatchCommitStarted"
	TypeBatchCommitEnded   = "BatchCommitEnded"
)

// EventContext is provenance recorded by whoever produced the event.
// The replay engine passes it through untouched.
type EventContext struct {
	ClientID             string `json:"clientId"`
	ClientSessionID      string `json:"clientSessionId"`
	ClientCommandBatchID string `json:"clientCommandBatchId"`
	CreatedAt            string `json:"createdAt"`
}

// Event is one immutable fact about a change to a specification.
// The set of implementations is closed; see the Type* constants.
type Event interface {
	// EventType returns the variant discriminant.
	EventType() string
	// Context returns the provenance attached to the event, if any.
	Context() foundation.Option[EventContext]

	sealed()
}

// ContributionAdded attaches a key/value annotation to entity ID.
type ContributionAdded struct {
	ID           string                          `json:"id"`
	Key          string                          `json:"key"`
	Value        string                          `json:"value"`
	EventContext foundation.Option[EventContext] `json:"eventContext"`
}

// APINamed sets the specification's display name.
type APINamed struct {
	Name         string                          `json:"name"`
	EventContext foundation.Option[EventContext] `json:"eventContext"`
}

// GitStateSet records the git coordinates the specification corresponds to.
type GitStateSet struct {
	BranchName   string                          `json:"branchName"`
	CommitID     string                          `json:"commitId"`
	EventContext foundation.Option[EventContext] `json:"eventContext"`
}

// BatchCommitStarted opens a logical transaction grouping the events that follow.
type BatchCommitStarted struct {
	BatchID       string                          `json:"batchId"`
	CommitMessage string                          `json:"commitMessage"`
	EventContext  foundation.Option[EventContext] `json:"eventContext"`
}

// BatchCommitEnded closes the transaction identified by BatchID.
type BatchCommitEnded struct {
	BatchID      string                          `json:"batchId"`
	EventContext foundation.Option[EventContext] `json:"eventContext"`
}

func (ContributionAdded) EventType() string  { return TypeContributionAdded }
func (APINamed) EventType() string           { return TypeAPINamed }
func (GitStateSet) EventType() string        { return TypeGitStateSet }
func (BatchCommitStarted) EventType() string { return TypeBatchCommitStarted }
func (BatchCommitEnded) EventType() string   { return TypeBatchCommitEnded }

func (e ContributionAdded) Context() foundation.Option[EventContext]  { return e.EventContext }
func (e APINamed) Context() foundation.Option[EventContext]           { return e.EventContext }
func (e GitStateSet) Context() foundation.Option[EventContext]        { return e.EventContext }
func (e BatchCommitStarted) Context() foundation.Option[EventContext] { return e.EventContext }
func (e BatchCommitEnded) Context() foundation.Option[EventContext]   { return e.EventContext }

func (ContributionAdded) sealed()  {}
func (APINamed) sealed()           {}
func (GitStateSet) sealed()        {}
func (BatchCommitStarted) sealed() {}
func (BatchCommitEnded) sealed()   {}

// WithContext returns a copy of e carrying ctx.
func WithContext(e Event, ctx EventContext) Event {
	opt := foundation.Some(ctx)
	switch v := e.(type) {
	case ContributionAdded:
		v.EventContext = opt
		return v
	case APINamed:
		v.EventContext = opt
		return v
	case GitStateSet:
		v.EventContext = opt
		return v
	case BatchCommitStarted:
		v.EventContext = opt
		return v
	case BatchCommitEnded:
		v.EventContext = opt
		return v
	default:
		return e
	}
}
