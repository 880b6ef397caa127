package capture

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
	"git.home.luguber.info/inful/specreplay/internal/interaction"
	"git.home.luguber.info/inful/specreplay/internal/logfields"
	"git.home.luguber.info/inful/specreplay/internal/retry"
)

// SubscriberConfig locates the capture subject.
type SubscriberConfig struct {
	URL     string
	Subject string
	Queue   string
}

// Ack is the reply sent to request/reply publishers.
type Ack struct {
	UUID     string `json:"uuid,omitempty"`
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// Subscriber ingests every message published on the capture subject.
type Subscriber struct {
	cfg      SubscriberConfig
	ingester *Ingester
	policy   retry.Policy

	mu   sync.Mutex
	conn *nats.Conn
	sub  *nats.Subscription
}

// NewSubscriber creates a subscriber; Start connects it.
func NewSubscriber(cfg SubscriberConfig, ingester *Ingester, policy retry.Policy) *Subscriber {
	return &Subscriber{cfg: cfg, ingester: ingester, policy: policy}
}

// Connect dials the broker, retrying per the policy.
func Connect(ctx context.Context, url string, policy retry.Policy, name string) (*nats.Conn, error) {
	var conn *nats.Conn
	err := policy.Do(ctx, func(context.Context) error {
		c, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
		if err != nil {
			return errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
				Retryable().
				WithContext("url", url).
				Build()
		}
		conn = c
		return nil
	}, func(attempt int, delay time.Duration, err error) {
		slog.Warn("NATS connect failed, retrying",
			slog.Int("attempt", attempt),
			logfields.DurationMS(float64(delay.Milliseconds())),
			logfields.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Start connects and subscribes. Messages are handled on the NATS client's
// delivery goroutine.
func (s *Subscriber) Start(ctx context.Context) error {
	conn, err := Connect(ctx, s.cfg.URL, s.policy, "specreplay-capture")
	if err != nil {
		return err
	}

	var sub *nats.Subscription
	if s.cfg.Queue != "" {
		sub, err = conn.QueueSubscribe(s.cfg.Subject, s.cfg.Queue, s.handleMessage)
	} else {
		sub, err = conn.Subscribe(s.cfg.Subject, s.handleMessage)
	}
	if err != nil {
		conn.Close()
		return errors.WrapError(err, errors.CategoryNetwork, "failed to subscribe").
			WithContext("subject", s.cfg.Subject).
			Build()
	}

	s.mu.Lock()
	s.conn, s.sub = conn, sub
	s.mu.Unlock()

	slog.Info("Capture subscriber started",
		logfields.Subject(s.cfg.Subject),
		slog.String("url", s.cfg.URL),
		slog.String("queue", s.cfg.Queue))
	return nil
}

// Run starts the subscriber and blocks until ctx is done, then drains.
func (s *Subscriber) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Close()
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	h, err := s.ingester.Handle(context.Background(), msg.Data)
	if msg.Reply == "" {
		return
	}
	ack := Ack{Accepted: err == nil}
	if err != nil {
		ack.Error = err.Error()
	} else {
		ack.UUID = h.UUID
	}
	b, _ := json.Marshal(ack)
	if rerr := msg.Respond(b); rerr != nil {
		slog.Warn("Failed to acknowledge interaction", logfields.Subject(msg.Subject), logfields.Error(rerr))
	}
}

// Close drains the subscription and closes the connection.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Drain()
	s.conn, s.sub = nil, nil
	return err
}

// Publisher sends interactions to a capture subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher publishes on subject over conn.
func NewPublisher(conn *nats.Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject}
}

// Publish sends the wire form of h.
func (p *Publisher) Publish(h *interaction.HTTPInteraction) error {
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return p.PublishRaw(b)
}

// PublishRaw sends an already-encoded capture document.
func (p *Publisher) PublishRaw(raw []byte) error {
	if err := p.conn.Publish(p.subject, raw); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish interaction").
			WithContext("subject", p.subject).
			Build()
	}
	return nil
}

// JetStreamSink archives accepted interactions on a JetStream stream. The
// interaction uuid is used as the message id so redeliveries are deduplicated
// by the server.
type JetStreamSink struct {
	js      jetstream.JetStream
	subject string
}

// NewJetStreamSink ensures stream exists with subject and returns a sink
// publishing to it.
func NewJetStreamSink(ctx context.Context, conn *nats.Conn, stream, subject string) (*JetStreamSink, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to create JetStream context").Build()
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to create archive stream").
			WithContext("stream", stream).
			Build()
	}
	return &JetStreamSink{js: js, subject: subject}, nil
}

func (s *JetStreamSink) Write(ctx context.Context, h *interaction.HTTPInteraction) error {
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if _, err := s.js.Publish(ctx, s.subject, b, jetstream.WithMsgID(h.UUID)); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to archive interaction").
			WithContext("uuid", h.UUID).
			Build()
	}
	return nil
}
