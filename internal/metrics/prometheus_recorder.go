package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/formtrack/internal/classify"
)

// Namespace prefixes every formtrack metric.
const Namespace = "formtrack"

// OtherLabel replaces label values that do not come from the classifier.
// Page tags are free text from the submitted HTML and would otherwise
// create a new series per distinct value.
const OtherLabel = "other"

// CategoryLabel returns category when it is a family tag, OtherLabel otherwise.
func CategoryLabel(category string) string {
	if classify.IsFamily(category) {
		return category
	}
	return OtherLabel
}

// TripleLabels returns the event triple when the classifier can produce it,
// OtherLabel three times otherwise.
func TripleLabels(category, action, label string) (string, string, string) {
	if classify.IsClassification(category, action, label) {
		return category, action, label
	}
	return OtherLabel, OtherLabel, OtherLabel
}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	pageDuration prom.Histogram
	pageOutcome  *prom.CounterVec
	events       *prom.CounterVec
	sinkFailures *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the page metrics on reg.
// A nil registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pageDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "page_duration_seconds",
			Help:      "Time spent extracting, classifying and emitting one page",
			Buckets:   prom.DefBuckets,
		}),
		pageOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "pages_processed_total",
			Help:      "Processed pages by outcome",
		}, []string{"outcome"}),
		events: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "pipeline_events_total",
			Help:      "Events produced by the pipeline by family; page tags count as other",
		}, []string{"category"}),
		sinkFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "sink_failures_total",
			Help:      "Failed emits by sink",
		}, []string{"sink"}),
	}
	reg.MustRegister(pr.pageDuration, pr.pageOutcome, pr.events, pr.sinkFailures)
	return pr
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageOutcome(outcome PageOutcome) {
	if p == nil || p.pageOutcome == nil {
		return
	}
	p.pageOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncEvent(category string) {
	if p == nil || p.events == nil {
		return
	}
	p.events.WithLabelValues(CategoryLabel(category)).Inc()
}

func (p *PrometheusRecorder) IncSinkFailure(sink string) {
	if p == nil || p.sinkFailures == nil {
		return
	}
	p.sinkFailures.WithLabelValues(sink).Inc()
}
