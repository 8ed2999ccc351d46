package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
	"git.home.luguber.info/inful/formtrack/internal/classify"
	"git.home.luguber.info/inful/formtrack/internal/config"
	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/logfields"
	"git.home.luguber.info/inful/formtrack/internal/metrics"
	"git.home.luguber.info/inful/formtrack/internal/summary"
	"git.home.luguber.info/inful/formtrack/internal/tagging"
)

// Tracker runs pages through extraction, classification and emission.
type Tracker struct {
	sink     analytics.Sink
	scan     config.ScanConfig
	sel      summary.Selectors
	recorder metrics.Recorder
	dlq      *DeadLetterQueue
	logger   *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithScanConfig sets selectors and enables the configured taggers.
func WithScanConfig(sc config.ScanConfig) Option {
	return func(t *Tracker) {
		t.scan = sc
		t.sel = summary.SelectorsFrom(sc)
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(t *Tracker) {
		if r != nil {
			t.recorder = r
		}
	}
}

// WithDeadLetterQueue collects failed deliveries in dlq.
func WithDeadLetterQueue(dlq *DeadLetterQueue) Option {
	return func(t *Tracker) { t.dlq = dlq }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Tracker emitting to sink. Without options only the error
// summary is read, using the default selectors.
func New(sink analytics.Sink, opts ...Option) *Tracker {
	t := &Tracker{
		sink:     sink,
		sel:      summary.DefaultSelectors(),
		recorder: metrics.NoopRecorder{},
		dlq:      NewDeadLetterQueue(1000),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DeadLetters returns the queue of failed deliveries.
func (t *Tracker) DeadLetters() *DeadLetterQueue { return t.dlq }

// ClassifiedEntry pairs a summary entry with its classification.
type ClassifiedEntry struct {
	Entry          classify.ErrorEntry     `json:"entry"`
	Classification classify.Classification `json:"classification"`
}

// Result describes one processed page.
type Result struct {
	PageView  analytics.PageView `json:"page_view"`
	Entries   []ClassifiedEntry  `json:"entries"`
	Heading   string             `json:"heading,omitempty"`
	Events    []analytics.Event  `json:"events"`
	Delivered int                `json:"delivered"`
}

// ProcessPage reads one page from r and emits its events under a new page view.
func (t *Tracker) ProcessPage(ctx context.Context, source string, r io.Reader) (*Result, error) {
	return t.ProcessPageView(ctx, analytics.NewPageView(source), r)
}

// ProcessFile processes the page stored at path.
func (t *Tracker) ProcessFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open page").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	pv := analytics.NewPageView(path)
	pv.Path = path
	return t.ProcessPageView(ctx, pv, f)
}

// ProcessPageView is ProcessPage with a caller-supplied page view. On sink
// failures the full result is returned together with a sink error.
func (t *Tracker) ProcessPageView(ctx context.Context, pv analytics.PageView, r io.Reader) (*Result, error) {
	start := time.Now()
	defer func() { t.recorder.ObservePageDuration(time.Since(start)) }()

	doc, err := summary.Parse(r)
	if err != nil {
		t.recorder.IncPageOutcome(metrics.PageFailed)
		return nil, err
	}

	res := t.collect(pv, doc)
	if err := ctx.Err(); err != nil {
		t.recorder.IncPageOutcome(metrics.PageFailed)
		return res, ferrors.WrapError(err, ferrors.CategoryRuntime, "page processing canceled").Build()
	}

	var errs []error
	for i, ev := range res.Events {
		t.recorder.IncEvent(ev.Category)
		msgID := analytics.MessageID(pv, i)
		if err := t.sink.Emit(analytics.WithMessageID(ctx, msgID), pv, ev); err != nil {
			errs = append(errs, err)
			t.deadLetter(pv, ev, msgID, err)
			continue
		}
		res.Delivered++
	}

	t.logger.Debug("Processed page",
		logfields.PageView(pv.ID),
		logfields.Source(pv.Source),
		logfields.Count(len(res.Events)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	switch {
	case len(errs) > 0:
		t.recorder.IncPageOutcome(metrics.PageFailed)
		return res, ferrors.WrapError(errors.Join(errs...), ferrors.CategorySink, "failed to deliver events").
			WithContext("page_view", pv.ID).
			WithContext("failed", len(errs)).
			Build()
	case len(res.Events) == 0:
		t.recorder.IncPageOutcome(metrics.PageClean)
	default:
		t.recorder.IncPageOutcome(metrics.PageTagged)
	}
	return res, nil
}

// collect builds the ordered event list of a parsed page.
func (t *Tracker) collect(pv analytics.PageView, doc *goquery.Document) *Result {
	s := summary.FromDocument(doc, t.sel)
	res := &Result{PageView: pv, Heading: s.Heading, Entries: []ClassifiedEntry{}, Events: []analytics.Event{}}

	for _, e := range s.Entries {
		c := classify.ClassifyEntry(e)
		res.Entries = append(res.Entries, ClassifiedEntry{Entry: e, Classification: c})
		res.Events = append(res.Events, analytics.FromClassification(c))
	}
	if s.HasHeading {
		if c, ok := classify.CheckHeading(s.Heading); ok {
			res.Events = append(res.Events, analytics.FromClassification(c))
		}
	}

	if t.scan.MetricsTags {
		res.Events = append(res.Events, tagging.MetricsTags(doc)...)
	}
	if t.scan.SubmitSummary {
		res.Events = append(res.Events, tagging.SubmitSummary(doc, "")...)
		for _, prefix := range t.scan.SubmitPrefix {
			res.Events = append(res.Events, tagging.SubmitSummary(doc, prefix)...)
		}
	}
	if t.scan.ExitSurvey {
		res.Events = append(res.Events, tagging.ExitSurvey(doc)...)
	}
	return res
}

func (t *Tracker) deadLetter(pv analytics.PageView, ev analytics.Event, msgID string, err error) {
	names := analytics.FailedSinks(err)
	if len(names) == 0 {
		names = []string{t.sink.Name()}
	}
	for _, name := range names {
		t.recorder.IncSinkFailure(name)
		if t.dlq != nil {
			t.dlq.Enqueue(FailedEvent{
				PageView:  pv,
				Event:     ev,
				Sink:      name,
				MessageID: msgID,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
		}
	}
	t.logger.Warn("Event delivery failed",
		logfields.PageView(pv.ID),
		logfields.Category(ev.Category),
		logfields.Action(ev.Action),
		logfields.Label(ev.Label),
		logfields.Error(err))
}

// Replay re-emits every dead-lettered event to the sink that rejected it,
// under its original message id. Events failing again are queued again.
func (t *Tracker) Replay(ctx context.Context) (int, error) {
	if t.dlq == nil {
		return 0, nil
	}
	var errs []error
	replayed := 0
	for _, fe := range t.dlq.Drain() {
		target := t.sinkNamed(fe.Sink)
		ectx := ctx
		if fe.MessageID != "" {
			ectx = analytics.WithMessageID(ctx, fe.MessageID)
		}
		if err := target.Emit(ectx, fe.PageView, fe.Event); err != nil {
			fe.Error = err.Error()
			fe.Timestamp = time.Now()
			t.dlq.Enqueue(fe)
			errs = append(errs, err)
			continue
		}
		replayed++
	}
	if len(errs) > 0 {
		return replayed, ferrors.WrapError(errors.Join(errs...), ferrors.CategorySink, "replay incomplete").
			WithContext("failed", len(errs)).
			Build()
	}
	return replayed, nil
}

// sinkNamed finds the member of a MultiSink with the given name.
func (t *Tracker) sinkNamed(name string) analytics.Sink {
	if m, ok := t.sink.(*analytics.MultiSink); ok {
		for _, s := range m.Sinks() {
			if s.Name() == name {
				return s
			}
		}
	}
	return t.sink
}
