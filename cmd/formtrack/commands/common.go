package commands

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/formtrack/internal/config"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "formtrack.yaml"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer

	ctx context.Context
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"formtrack.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Classify ClassifyCmd `cmd:"" help:"Classify a single error summary entry"`
	Scan     ScanCmd     `cmd:"" help:"Process rendered pages and emit their events"`
	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API, page watcher and scheduled reports"`
	Stats    StatsCmd    `cmd:"" help:"Show the most frequent failures from the event store"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the configuration file. A missing file at the default
// location yields the defaults; a missing explicit file is an error.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.Config == "" || c.Config == DefaultConfigPath {
		if _, err := os.Stat(DefaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			slog.Debug("No configuration file, using defaults", slog.String("path", DefaultConfigPath))
			return config.Default(), nil
		}
		return config.Load(DefaultConfigPath)
	}
	return config.Load(c.Config)
}

// logger applies the configured log level and format on top of --verbose.
func (c *CLI) logger(cfg *config.Config) *slog.Logger {
	logger := cfg.Logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(logger)
	return logger
}
