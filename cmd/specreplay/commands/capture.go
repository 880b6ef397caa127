package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/specreplay/internal/capture"
	"git.home.luguber.info/inful/specreplay/internal/config"
	"git.home.luguber.info/inful/specreplay/internal/eventstore"
	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/metrics"
	"git.home.luguber.info/inful/specreplay/internal/retry"
	"git.home.luguber.info/inful/specreplay/internal/server/middleware"
)

// CaptureCmd implements the 'capture' command.
type CaptureCmd struct {
	NATSURL  string `name:"nats-url" help:"Override the NATS server URL"`
	Subject  string `help:"Override the capture subject"`
	Queue    string `help:"Override the queue group"`
	Output   string `short:"o" help:"Override the JSON lines output; - is stdout"`
	HTTPAddr string `name:"http-addr" help:"Also accept POST /interactions on this address"`
	Specs    bool   `help:"Serve GET /specs/{id} from the event log on the HTTP listener"`
}

// apply layers the flag overrides onto cfg and validates the result.
func (c *CaptureCmd) apply(cfg *config.Config) error {
	if c.NATSURL != "" {
		cfg.Capture.NATSURL = c.NATSURL
	}
	if c.Subject != "" {
		cfg.Capture.Subject = c.Subject
	}
	if c.Queue != "" {
		cfg.Capture.Queue = c.Queue
	}
	if c.Output != "" {
		cfg.Capture.Output = c.Output
	}
	if c.HTTPAddr != "" {
		cfg.Capture.HTTPAddr = c.HTTPAddr
	}
	return config.Validate(cfg)
}

func (c *CaptureCmd) Run(g *Global, root *CLI) error {
	cfg := root.Settings()
	if err := c.apply(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	policy := retry.FromConfig(cfg.Retry)
	if err := policy.Validate(); err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var servers []*http.Server
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.HTTPHandler(reg))
		servers = append(servers, newServer(cfg.Metrics.Addr, mux))
	}

	sink, closeSink, err := c.openSink(ctx, cfg, policy)
	if err != nil {
		return err
	}
	defer closeSink()

	ingester := capture.NewIngester(sink, capture.WithRecorder(recorder), capture.WithLogger(g.Logger))

	if cfg.Capture.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/interactions", capture.NewHandler(ingester, g.Logger))
		if c.Specs {
			store, err := openStore(root)
			if err != nil {
				return err
			}
			defer closeStore(store)
			mux.Handle("GET /specs/{id}", specHandler(eventstore.NewProjections(store,
				replayOptions(recorder, g.Logger)...), g.Logger))
		}
		servers = append(servers, newServer(cfg.Capture.HTTPAddr, middleware.Chain(g.Logger)(mux)))
	}

	errCh := make(chan error, len(servers)+1)
	for _, srv := range servers {
		go func(srv *http.Server) {
			slog.Info("HTTP listener started", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errCh <- errors.WrapError(err, errors.CategoryNetwork, "HTTP listener failed").
					WithContext("addr", srv.Addr).
					Build()
			}
		}(srv)
	}

	sub := capture.NewSubscriber(capture.SubscriberConfig{
		URL:     cfg.Capture.NATSURL,
		Subject: cfg.Capture.Subject,
		Queue:   cfg.Capture.Queue,
	}, ingester, policy)
	go func() { errCh <- sub.Run(ctx) }()

	var runErr error
	select {
	case runErr = <-errCh:
		cancel()
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping capture...")
	}
	if err := sub.Close(); err != nil {
		slog.Warn("Failed to drain subscription", logfields.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Failed to stop HTTP listener", slog.String("addr", srv.Addr), logfields.Error(err))
		}
	}
	return runErr
}

func (c *CaptureCmd) openSink(ctx context.Context, cfg *config.Config, policy retry.Policy) (capture.Sink, func(), error) {
	jsonl, err := capture.OpenJSONLSink(cfg.Capture.Output)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = jsonl.Close() }
	if cfg.Capture.ArchiveStream == "" {
		return jsonl, closeFn, nil
	}

	conn, err := capture.Connect(ctx, cfg.Capture.NATSURL, policy, "specreplay-archive")
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	archive, err := capture.NewJetStreamSink(ctx, conn, cfg.Capture.ArchiveStream, cfg.Capture.ArchiveSubject)
	if err != nil {
		conn.Close()
		closeFn()
		return nil, nil, err
	}
	return capture.MultiSink{jsonl, archive}, func() {
		conn.Close()
		closeFn()
	}, nil
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
}
