package commands

import (
	"time"

	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/report"
)

// StatsCmd implements the 'stats' command.
type StatsCmd struct {
	DB     string        `help:"Event store path (overrides sinks.store.path)" type:"path"`
	Top    int           `short:"n" help:"Number of failures to list" default:"10"`
	Since  time.Duration `help:"Only count events newer than this (e.g. 24h); 0 counts everything"`
	Format string        `short:"f" help:"Output format" enum:"text,markdown,html" default:"text"`
}

func (s *StatsCmd) Run(g *Global, root *CLI) error {
	path := s.DB
	if path == "" {
		cfg, err := root.loadConfig()
		if err != nil {
			return err
		}
		root.logger(cfg)
		if cfg.Sinks.Store == nil || !cfg.Sinks.Store.Enabled {
			return ferrors.ConfigError("event store is not enabled (set sinks.store or pass --db)").Build()
		}
		path = cfg.Sinks.Store.Path
	}

	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := g.context()
	projection := eventstore.NewFailureProjection(store)
	var since time.Time
	if s.Since > 0 {
		since = time.Now().Add(-s.Since)
		err = projection.RebuildRange(ctx, since, time.Now().Add(time.Hour))
	} else {
		err = projection.Rebuild(ctx)
	}
	if err != nil {
		return err
	}
	return report.Render(g.Out, report.FromProjection(projection, s.Top, since), report.Format(s.Format))
}
