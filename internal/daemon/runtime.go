package daemon

import (
	"context"
	"errors"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
	"git.home.luguber.info/inful/formtrack/internal/config"
	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	"git.home.luguber.info/inful/formtrack/internal/metrics"
	"git.home.luguber.info/inful/formtrack/internal/pipeline"
)

// Runtime holds the components shared by the service and the one-shot commands.
type Runtime struct {
	Registry   *prom.Registry
	Store      eventstore.Store              // nil when the event store is disabled
	Projection *eventstore.FailureProjection // nil when the event store is disabled
	Sinks      *analytics.MultiSink
	Tracker    *pipeline.Tracker
}

// OpenRuntime opens the event store, the configured sinks and a tracker.
func OpenRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{Registry: prom.NewRegistry()}

	if sc := cfg.Sinks.Store; sc != nil && sc.Enabled {
		store, err := eventstore.NewSQLiteStore(sc.Path)
		if err != nil {
			return nil, err
		}
		rt.Store = store
		rt.Projection = eventstore.NewFailureProjection(store)
		if err := rt.Projection.Rebuild(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	sinks, err := analytics.Open(ctx, cfg.Sinks, analytics.Deps{
		Logger:     logger,
		Registry:   rt.Registry,
		Store:      rt.Store,
		Projection: rt.Projection,
	})
	if err != nil {
		if rt.Store != nil {
			_ = rt.Store.Close()
		}
		return nil, err
	}
	rt.Sinks = sinks

	rt.Tracker = pipeline.New(sinks,
		pipeline.WithScanConfig(cfg.Scan),
		pipeline.WithRecorder(metrics.NewPrometheusRecorder(rt.Registry)),
		pipeline.WithLogger(logger),
	)
	return rt, nil
}

// Close closes the sinks, then the store.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Sinks != nil {
		errs = append(errs, rt.Sinks.Close())
	}
	if rt.Store != nil {
		errs = append(errs, rt.Store.Close())
	}
	return errors.Join(errs...)
}
