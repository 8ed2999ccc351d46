package daemon

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	"git.home.luguber.info/inful/formtrack/internal/logfields"
	"git.home.luguber.info/inful/formtrack/internal/pipeline"
)

const (
	reportJobName = "failure-report"
	replayJobName = "dead-letter-replay"
)

// ReportJob rebuilds the projection from the store and logs the most frequent failures.
func ReportJob(ctx context.Context, projection *eventstore.FailureProjection, top int) func() {
	return func() {
		if err := projection.Rebuild(ctx); err != nil {
			slog.Error("Failed to rebuild failure projection", logfields.Job(reportJobName), logfields.Error(err))
			return
		}
		events, pageViews := projection.Totals()
		slog.Info("Failure report",
			logfields.Job(reportJobName),
			logfields.Count(events),
			slog.Int("page_views", pageViews))
		for i, c := range projection.Top(top) {
			slog.Info("Top failure",
				slog.Int("rank", i+1),
				logfields.Category(c.Category),
				logfields.Action(c.Action),
				logfields.Label(c.Label),
				logfields.Count(c.Count))
		}
	}
}

// ReplayJob re-emits dead-lettered events.
func ReplayJob(ctx context.Context, tracker *pipeline.Tracker) func() {
	return func() {
		if tracker.DeadLetters().Count() == 0 {
			return
		}
		n, err := tracker.Replay(ctx)
		if err != nil {
			slog.Warn("Dead-letter replay incomplete",
				logfields.Job(replayJobName),
				logfields.Count(n),
				logfields.Error(err))
			return
		}
		slog.Info("Dead-letter replay finished", logfields.Job(replayJobName), logfields.Count(n))
	}
}
