package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
	"git.home.luguber.info/inful/formtrack/internal/daemon"
	"git.home.luguber.info/inful/formtrack/internal/pipeline"
)

// ScanCmd implements the 'scan' command.
type ScanCmd struct {
	Files  []string `arg:"" name:"file" help:"Rendered HTML pages (- reads stdin)" type:"path"`
	DryRun bool     `name:"dry-run" help:"Print events without sending them to the configured sinks"`
	JSON   bool     `help:"Print results as JSON lines"`
}

func (s *ScanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	logger := root.logger(cfg)
	ctx := g.context()

	var tracker *pipeline.Tracker
	if s.DryRun {
		tracker = pipeline.New(analytics.NewMemorySink("dry-run"),
			pipeline.WithScanConfig(cfg.Scan),
			pipeline.WithLogger(logger))
	} else {
		rt, err := daemon.OpenRuntime(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()
		tracker = rt.Tracker
	}

	var errs []error
	for _, file := range s.Files {
		var res *pipeline.Result
		var perr error
		if file == "-" {
			res, perr = tracker.ProcessPage(ctx, "stdin", os.Stdin)
		} else {
			res, perr = tracker.ProcessFile(ctx, file)
		}
		if res != nil {
			if err := s.print(g, file, res); err != nil {
				return err
			}
		}
		if perr != nil {
			errs = append(errs, perr)
		}
	}
	return errors.Join(errs...)
}

func (s *ScanCmd) print(g *Global, file string, res *pipeline.Result) error {
	if s.JSON {
		return json.NewEncoder(g.Out).Encode(res)
	}
	if _, err := fmt.Fprintf(g.Out, "%s (%d events)\n", file, len(res.Events)); err != nil {
		return err
	}
	for _, ev := range res.Events {
		if _, err := fmt.Fprintf(g.Out, "  %s\n", ev); err != nil {
			return err
		}
	}
	return nil
}
