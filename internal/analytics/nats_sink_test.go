package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formtrack/internal/config"
)

type published struct {
	subject string
	data    []byte
	opts    int
}

type fakePublisher struct {
	mu       sync.Mutex
	failures int
	msgs     []published
	attempts []string
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, subject)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("nats: no responders available for request")
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data, opts: len(opts)})
	return &jetstream.PubAck{Stream: "FORMTRACK", Sequence: uint64(len(f.msgs))}, nil
}

func testNATSConfig() *config.NATSConfig {
	return &config.NATSConfig{
		Enabled:        true,
		URL:            "nats://127.0.0.1:4222",
		Subject:        "formtrack.events",
		Stream:         "FORMTRACK",
		PublishTimeout: "1s",
		Retry: config.RetryConfig{
			Mode:       config.RetryBackoffFixed,
			Initial:    "1ms",
			Max:        "5ms",
			MaxRetries: 2,
		},
	}
}

func TestNATSSink_PublishesEnvelope(t *testing.T) {
	pub := &fakePublisher{}
	s := newNATSSink(pub, testNATSConfig())

	pv := PageView{ID: "pv-1", Source: "form.html", At: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	ev := NewEvent("error-Amount", "currentPensions", "negativeAmount")
	require.NoError(t, s.Emit(t.Context(), pv, ev))

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "formtrack.events.error-Amount", msg.subject)
	assert.Equal(t, 1, msg.opts, "message id option")

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.data, &env))
	want := NewEnvelope(pv, ev)
	want.MessageID = "pv-1/1"
	assert.Equal(t, want, env)
	assert.NoError(t, s.Close())
}

func TestNATSSink_ReusesMessageIDFromContext(t *testing.T) {
	pub := &fakePublisher{failures: 10}
	s := newNATSSink(pub, testNATSConfig())

	pv := NewPageView("form.html")
	ev := NewEvent("error-Date", "psoDetails", "dateOutOfRange")
	ctx := WithMessageID(t.Context(), MessageID(pv, 3))

	require.Error(t, s.Emit(ctx, pv, ev))
	pub.mu.Lock()
	pub.failures = 0
	pub.mu.Unlock()
	require.NoError(t, s.Emit(ctx, pv, ev))
	require.NoError(t, s.Emit(ctx, pv, ev))

	require.Len(t, pub.msgs, 2)
	for _, msg := range pub.msgs {
		var env Envelope
		require.NoError(t, json.Unmarshal(msg.data, &env))
		assert.Equal(t, pv.ID+"-3", env.MessageID)
	}
}

func TestNATSSink_RetriesTransientFailures(t *testing.T) {
	pub := &fakePublisher{failures: 2}
	s := newNATSSink(pub, testNATSConfig())

	require.NoError(t, s.Emit(t.Context(), NewPageView("p"), NewEvent("c", "a", "l")))
	assert.Len(t, pub.attempts, 3)
	assert.Len(t, pub.msgs, 1)
}

func TestNATSSink_GivesUpAfterMaxRetries(t *testing.T) {
	pub := &fakePublisher{failures: 10}
	s := newNATSSink(pub, testNATSConfig())

	err := s.Emit(t.Context(), NewPageView("p"), NewEvent("c", "a", "l"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to publish event")
	assert.Len(t, pub.attempts, 3)
}

func TestNATSSink_RateLimitHonoursContext(t *testing.T) {
	cfg := testNATSConfig()
	cfg.RatePerSecond = 0.001
	cfg.Burst = 1
	pub := &fakePublisher{}
	s := newNATSSink(pub, cfg)

	require.NoError(t, s.Emit(t.Context(), NewPageView("p"), NewEvent("c", "a", "l")))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := s.Emit(ctx, NewPageView("p"), NewEvent("c", "a", "l"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "rate limiter")
	assert.Len(t, pub.msgs, 1)
}

func TestSubjectToken(t *testing.T) {
	tests := map[string]string{
		"error-Amount": "error-Amount",
		"a.b":          "a_b",
		"x *>":         "x___",
		"":             "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, subjectToken(in), in)
	}
}
