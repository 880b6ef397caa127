package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultAccepted ResultLabel = "accepted"
	ResultRejected ResultLabel = "rejected"
	ResultFailed   ResultLabel = "failed"
)

// Recorder defines observability hooks for replay and capture. Implementations
// may forward to Prometheus or elsewhere; NoopRecorder is the default so
// callers never nil-check.
type Recorder interface {
	IncEventApplied(eventType string)
	IncBatchCommitted()
	IncReplayFailure(kind string)
	ObserveReplayDuration(d time.Duration)
	IncInteraction(result ResultLabel)
	IncEventsAppended(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncEventApplied(string)              {}
func (NoopRecorder) IncBatchCommitted()                  {}
func (NoopRecorder) IncReplayFailure(string)             {}
func (NoopRecorder) ObserveReplayDuration(time.Duration) {}
func (NoopRecorder) IncInteraction(ResultLabel)          {}
func (NoopRecorder) IncEventsAppended(int)               {}
