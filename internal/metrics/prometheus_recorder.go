package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "specreplay"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	eventsApplied    *prom.CounterVec
	batchesCommitted prom.Counter
	replayFailures   *prom.CounterVec
	replayDuration   prom.Histogram
	interactions     *prom.CounterVec
	eventsAppended   prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.eventsApplied = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "events_applied_total",
			Help:      "RFC events folded into a specification, by event type",
		}, []string{"event_type"})
		pr.batchesCommitted = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "batches_committed_total",
			Help:      "Batch commits closed by the replay engine",
		})
		pr.replayFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "replay_failures_total",
			Help:      "Replays aborted by an integrity error, by kind",
		}, []string{"kind"})
		pr.replayDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "replay_duration_seconds",
			Help:      "Duration of full replays",
			Buckets:   prom.DefBuckets,
		})
		pr.interactions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Captured interactions by ingest result",
		}, []string{"result"})
		pr.eventsAppended = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "events_appended_total",
			Help:      "Events appended to the event log",
		})
		reg.MustRegister(pr.eventsApplied, pr.batchesCommitted, pr.replayFailures, pr.replayDuration, pr.interactions, pr.eventsAppended)
	})
	return pr
}

func (p *PrometheusRecorder) IncEventApplied(eventType string) {
	if p == nil || p.eventsApplied == nil {
		return
	}
	p.eventsApplied.WithLabelValues(eventType).Inc()
}

func (p *PrometheusRecorder) IncBatchCommitted() {
	if p == nil || p.batchesCommitted == nil {
		return
	}
	p.batchesCommitted.Inc()
}

func (p *PrometheusRecorder) IncReplayFailure(kind string) {
	if p == nil || p.replayFailures == nil {
		return
	}
	p.replayFailures.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) ObserveReplayDuration(d time.Duration) {
	if p == nil || p.replayDuration == nil {
		return
	}
	p.replayDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncInteraction(result ResultLabel) {
	if p == nil || p.interactions == nil {
		return
	}
	p.interactions.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncEventsAppended(n int) {
	if p == nil || p.eventsAppended == nil || n <= 0 {
		return
	}
	p.eventsAppended.Add(float64(n))
}
