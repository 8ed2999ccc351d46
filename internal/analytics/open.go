package analytics

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/formtrack/internal/config"
	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
)

// Deps are the shared resources sinks may attach to.
type Deps struct {
	Logger     *slog.Logger
	Registry   prom.Registerer
	Store      eventstore.Store              // used when the store sink is enabled; opened from config when nil
	Projection *eventstore.FailureProjection // optional, backed by Store and kept current by the store sink
}

// Open builds the sinks enabled in cfg. On error every sink opened so far is closed.
func Open(ctx context.Context, cfg config.SinksConfig, deps Deps) (*MultiSink, error) {
	var sinks []Sink
	fail := func(err error) (*MultiSink, error) {
		_ = NewMultiSink(sinks...).Close()
		return nil, err
	}

	if cfg.Log {
		sinks = append(sinks, NewLogSink(deps.Logger))
	}
	if cfg.Prometheus {
		ps, err := NewPrometheusSink(deps.Registry)
		if err != nil {
			return fail(ferrors.WrapError(err, ferrors.CategoryConfig, "failed to register prometheus sink").Build())
		}
		sinks = append(sinks, ps)
	}
	if cfg.Store != nil && cfg.Store.Enabled {
		store := deps.Store
		owned := false
		if store == nil {
			s, err := eventstore.NewSQLiteStore(cfg.Store.Path)
			if err != nil {
				return fail(err)
			}
			store, owned = s, true
		}
		projection := deps.Projection
		if owned {
			projection = nil
		}
		ss := NewStoreSink(store, projection)
		ss.owned = owned
		sinks = append(sinks, ss)
	}
	if cfg.NATS != nil && cfg.NATS.Enabled {
		ns, err := NewNATSSink(ctx, cfg.NATS)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, ns)
	}
	return NewMultiSink(sinks...), nil
}
