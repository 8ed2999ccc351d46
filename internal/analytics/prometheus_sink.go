package analytics

import (
	"context"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/formtrack/internal/metrics"
)

// PrometheusSink counts classified events by their full triple. Every
// other event is counted under metrics.OtherLabel.
type PrometheusSink struct {
	events *prom.CounterVec
}

// NewPrometheusSink registers formtrack_events_total on reg.
func NewPrometheusSink(reg prom.Registerer) (*PrometheusSink, error) {
	events := prom.NewCounterVec(prom.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "events_total",
		Help:      "Analytics events by category, action and label",
	}, []string{"category", "action", "label"})
	if reg == nil {
		reg = prom.NewRegistry()
	}
	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &PrometheusSink{events: events}, nil
}

func (s *PrometheusSink) Name() string { return "prometheus" }

func (s *PrometheusSink) Emit(_ context.Context, _ PageView, ev Event) error {
	s.events.WithLabelValues(metrics.TripleLabels(ev.Category, ev.Action, ev.Label)).Inc()
	return nil
}

func (s *PrometheusSink) Close() error { return nil }
