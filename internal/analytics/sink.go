package analytics

import (
	"context"
	"errors"
	"sync"

	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
)

// Sink receives analytics events.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Emit delivers one event of the page view.
	Emit(ctx context.Context, pv PageView, ev Event) error
	// Close flushes and releases resources.
	Close() error
}

// SinkFailure records which sink rejected an event.
type SinkFailure struct {
	Sink string
	Err  error
}

func (f *SinkFailure) Error() string { return f.Sink + ": " + f.Err.Error() }

func (f *SinkFailure) Unwrap() error { return f.Err }

// FailedSinks lists the sink names found in err, in order, including every
// branch of joined errors.
func FailedSinks(err error) []string {
	var names []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if f, ok := e.(*SinkFailure); ok {
			names = append(names, f.Sink)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return names
}

// MultiSink emits every event to all of its sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink fans out to sinks in the given order.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Name returns "multi".
func (m *MultiSink) Name() string { return "multi" }

// Sinks returns the wrapped sinks.
func (m *MultiSink) Sinks() []Sink { return append([]Sink(nil), m.sinks...) }

// Emit delivers ev to every sink. A failing sink does not stop the others;
// all failures are joined as *SinkFailure values.
func (m *MultiSink) Emit(ctx context.Context, pv PageView, ev Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, pv, ev); err != nil {
			errs = append(errs, &SinkFailure{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, &SinkFailure{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Emitted is an event as seen by a MemorySink.
type Emitted struct {
	PageView  PageView
	Event     Event
	MessageID string
}

// MemorySink keeps events in memory. It can be told to fail.
type MemorySink struct {
	mu     sync.Mutex
	name   string
	events []Emitted
	fail   error
	closed bool
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink(name string) *MemorySink {
	if name == "" {
		name = "memory"
	}
	return &MemorySink{name: name}
}

// FailWith makes every following Emit return err. Nil restores success.
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *MemorySink) Name() string { return s.name }

func (s *MemorySink) Emit(ctx context.Context, pv PageView, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ferrors.SinkError("sink closed").WithContext("sink", s.name).Build()
	}
	if s.fail != nil {
		return s.fail
	}
	s.events = append(s.events, Emitted{PageView: pv, Event: ev, MessageID: MessageIDFrom(ctx)})
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Events returns the events emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	for i, e := range s.events {
		out[i] = e.Event
	}
	return out
}

// Emitted returns events together with their page views.
func (s *MemorySink) Emitted() []Emitted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Emitted(nil), s.events...)
}
