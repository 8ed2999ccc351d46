package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/formtrack/internal/daemon"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `help:"Listen address (overrides server.addr)"`
	Watch string `help:"Directory to watch for pages (overrides watch.dir and enables the watcher)" type:"path"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.Watch != "" {
		cfg.Watch.Enabled = true
		cfg.Watch.Dir = s.Watch
	}
	logger := root.logger(cfg)
	ctx := g.context()

	d, err := daemon.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("formtrack service starting", slog.String("config", cfg.String()))
	if err := d.Run(ctx); err != nil {
		return err
	}
	logger.Info("formtrack service stopped")
	return nil
}
