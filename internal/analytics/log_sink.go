package analytics

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/formtrack/internal/logfields"
)

// LogSink writes one structured log line per event.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink logs at info level through logger, or slog.Default when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, level: slog.LevelInfo}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Emit(ctx context.Context, pv PageView, ev Event) error {
	s.logger.LogAttrs(ctx, s.level, "analytics event",
		logfields.PageView(pv.ID),
		logfields.Source(pv.Source),
		logfields.Category(ev.Category),
		logfields.Action(ev.Action),
		logfields.Label(ev.Label),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
