package capture

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/specreplay/internal/interaction"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/metrics"
)

// Ingester validates raw captures and forwards accepted ones to a sink.
// It is safe for concurrent use when the sink is.
type Ingester struct {
	sink     Sink
	recorder metrics.Recorder
	logger   *slog.Logger
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithRecorder counts accepted and rejected interactions.
func WithRecorder(r metrics.Recorder) IngesterOption {
	return func(i *Ingester) {
		if r != nil {
			i.recorder = r
		}
	}
}

// WithLogger sets the logger for per-interaction messages.
func WithLogger(l *slog.Logger) IngesterOption {
	return func(i *Ingester) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewIngester returns an Ingester writing to sink.
func NewIngester(sink Sink, opts ...IngesterOption) *Ingester {
	i := &Ingester{sink: sink, recorder: metrics.NoopRecorder{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Handle ingests one raw capture. A rejected capture returns the ingest
// error; a sink failure is returned as is.
func (i *Ingester) Handle(ctx context.Context, raw []byte) (*interaction.HTTPInteraction, error) {
	h, err := interaction.Ingest(raw)
	if err != nil {
		i.recorder.IncInteraction(metrics.ResultRejected)
		i.logger.Warn("Rejected interaction", logfields.Error(err))
		return nil, err
	}

	if err := i.sink.Write(ctx, h); err != nil {
		i.recorder.IncInteraction(metrics.ResultFailed)
		i.logger.Error("Failed to store interaction",
			logfields.InteractionUUID(h.UUID),
			logfields.Error(err))
		return nil, err
	}

	i.recorder.IncInteraction(metrics.ResultAccepted)
	i.logger.Debug("Accepted interaction",
		logfields.InteractionUUID(h.UUID),
		logfields.Method(h.Request.Method),
		logfields.Path(h.Request.Path),
		logfields.Status(int(h.Response.StatusCode)))
	return h, nil
}
