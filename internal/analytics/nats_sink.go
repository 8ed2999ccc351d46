package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/time/rate"

	"git.home.luguber.info/inful/formtrack/internal/config"
	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/logfields"
	"git.home.luguber.info/inful/formtrack/internal/retry"
)

// publisher is the part of jetstream.JetStream the sink needs.
type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSSink publishes event envelopes to a JetStream stream on
// "<subject>.<category>".
type NATSSink struct {
	pub     publisher
	conn    *nats.Conn
	subject string
	timeout time.Duration
	limiter *rate.Limiter
	policy  retry.Policy
	seq     atomic.Uint64
}

// NewNATSSink connects to cfg.URL and ensures the stream exists.
func NewNATSSink(ctx context.Context, cfg *config.NATSConfig) (*NATSSink, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, ferrors.ConfigError("nats sink is not enabled").Build()
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("formtrack"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", cfg.URL).
			Retryable().
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to create JetStream context").Build()
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "formtrack analytics events",
		Subjects:    []string{cfg.Subject + ".>"},
	})
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to create or update stream").
			WithContext("stream", cfg.Stream).
			Build()
	}

	s := newNATSSink(js, cfg)
	s.conn = conn

	slog.Info("NATS sink initialized",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("stream", cfg.Stream))
	return s, nil
}

func newNATSSink(pub publisher, cfg *config.NATSConfig) *NATSSink {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := max(cfg.Burst, 1)
	timeout := cfg.PublishTimeoutDuration()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NATSSink{
		pub:     pub,
		subject: cfg.Subject,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
		policy:  retry.FromConfig(cfg.Retry),
	}
}

func (s *NATSSink) Name() string { return "nats" }

// SubjectFor returns the subject an event is published on.
func (s *NATSSink) SubjectFor(ev Event) string {
	return s.subject + "." + subjectToken(ev.Category)
}

// Emit waits for the rate limiter, then publishes with retries. The message
// id comes from MessageIDFrom(ctx) when set and stays the same across retries
// and replays, so JetStream drops duplicates.
func (s *NATSSink) Emit(ctx context.Context, pv PageView, ev Event) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategorySink, "rate limiter wait failed").
			WithContext("sink", s.Name()).
			Build()
	}

	msgID := MessageIDFrom(ctx)
	if msgID == "" {
		msgID = pv.ID + "/" + strconv.FormatUint(s.seq.Add(1), 10)
	}
	env := NewEnvelope(pv, ev)
	env.MessageID = msgID
	data, err := json.Marshal(env)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal event").Build()
	}

	subject := s.SubjectFor(ev)

	return s.policy.Do(ctx, func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if _, err := s.pub.Publish(pctx, subject, data, jetstream.WithMsgID(msgID)); err != nil {
			slog.Debug("NATS publish failed",
				logfields.Sink(s.Name()),
				logfields.PageView(pv.ID),
				logfields.Error(err))
			return ferrors.WrapError(err, ferrors.CategorySink, "failed to publish event").
				WithContext("subject", subject).
				Retryable().
				Build()
		}
		return nil
	})
}

// Close drains the connection when the sink owns one.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to drain NATS connection").Build()
	}
	return nil
}

// subjectToken makes s safe as a single NATS subject token.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}
