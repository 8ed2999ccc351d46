package metrics

import "time"

// PageOutcome enumerates the final status of one processed page.
type PageOutcome string

const (
	PageClean  PageOutcome = "clean"  // no events emitted
	PageTagged PageOutcome = "tagged" // events emitted, all sinks succeeded
	PageFailed PageOutcome = "failed" // parse failure or at least one sink error
)

// Recorder defines observability hooks for page processing.
type Recorder interface {
	ObservePageDuration(d time.Duration)
	IncPageOutcome(outcome PageOutcome)
	IncEvent(category string)
	IncSinkFailure(sink string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageDuration(time.Duration) {}
func (NoopRecorder) IncPageOutcome(PageOutcome)        {}
func (NoopRecorder) IncEvent(string)                   {}
func (NoopRecorder) IncSinkFailure(string)             {}
