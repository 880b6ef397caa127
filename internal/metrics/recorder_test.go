package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; used to check that Recorder stays implementable
// outside Prometheus.
type testRecorder struct {
	mu           sync.Mutex
	applied      map[string]int
	batches      int
	failures     map[string]int
	interactions map[ResultLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{applied: map[string]int{}, failures: map[string]int{}, interactions: map[ResultLabel]int{}}
}

func (t *testRecorder) IncEventApplied(eventType string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applied[eventType]++
}
func (t *testRecorder) IncBatchCommitted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batches++
}
func (t *testRecorder) IncReplayFailure(kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[kind]++
}
func (t *testRecorder) ObserveReplayDuration(time.Duration) {}
func (t *testRecorder) IncInteraction(result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interactions[result]++
}
func (t *testRecorder) IncEventsAppended(int) {}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
