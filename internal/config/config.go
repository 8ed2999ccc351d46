package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
)

// Config represents the formtrack configuration file.
type Config struct {
	Version string        `yaml:"version"`
	Logging LoggingConfig `yaml:"logging"`
	Scan    ScanConfig    `yaml:"scan"`
	Sinks   SinksConfig   `yaml:"sinks"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
	Report  ReportConfig  `yaml:"report"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// ScanConfig controls how pages are read.
type ScanConfig struct {
	SummarySelector string `yaml:"summary_selector"`
	HeadingSelector string `yaml:"heading_selector"`
	// Page taggers carried over from the calculator's page scripts.
	MetricsTags   bool     `yaml:"metrics_tags"`
	SubmitSummary bool     `yaml:"submit_summary"`
	SubmitPrefix  []string `yaml:"submit_prefixes,omitempty"` // e.g. "ip14"
	ExitSurvey    bool     `yaml:"exit_survey"`
}

// SinksConfig selects where analytics events go. Several sinks may be active at once.
type SinksConfig struct {
	Log        bool         `yaml:"log"`
	Prometheus bool         `yaml:"prometheus"`
	NATS       *NATSConfig  `yaml:"nats,omitempty"`
	Store      *StoreConfig `yaml:"store,omitempty"`
}

// NATSConfig configures the JetStream publisher.
type NATSConfig struct {
	Enabled        bool        `yaml:"enabled"`
	URL            string      `yaml:"url"`
	Subject        string      `yaml:"subject"`
	Stream         string      `yaml:"stream"`
	RatePerSecond  float64     `yaml:"rate_per_second"`
	Burst          int         `yaml:"burst"`
	PublishTimeout string      `yaml:"publish_timeout"`
	Retry          RetryConfig `yaml:"retry"`
}

// RetryConfig describes backoff for transient sink failures.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    string           `yaml:"initial"`
	Max        string           `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// StoreConfig configures the SQLite event store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// WatchConfig configures the drop-directory watcher.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	Debounce string `yaml:"debounce"`
}

// ReportConfig configures the periodic failure report.
type ReportConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
	Cron     string `yaml:"cron,omitempty"` // overrides interval when set
	Top      int    `yaml:"top"`
}

// PublishTimeoutDuration returns the parsed publish timeout. Call after Validate.
func (n *NATSConfig) PublishTimeoutDuration() time.Duration { return mustDuration(n.PublishTimeout) }

// InitialDuration returns the parsed initial backoff. Call after Validate.
func (r RetryConfig) InitialDuration() time.Duration { return mustDuration(r.Initial) }

// MaxDuration returns the parsed backoff cap. Call after Validate.
func (r RetryConfig) MaxDuration() time.Duration { return mustDuration(r.Max) }

// DebounceDuration returns the parsed debounce window. Call after Validate.
func (w WatchConfig) DebounceDuration() time.Duration { return mustDuration(w.Debounce) }

// IntervalDuration returns the parsed report interval. Call after Validate.
func (r ReportConfig) IntervalDuration() time.Duration { return mustDuration(r.Interval) }

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Load reads, expands, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load .env file").Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references from the environment.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Sinks.NATS = &NATSConfig{
		Enabled: false,
		URL:     "nats://localhost:4222",
	}
	example.Sinks.Store = &StoreConfig{Enabled: true, Path: "./formtrack.db"}
	example.Watch = WatchConfig{Enabled: true, Dir: "./pages"}
	example.Report = ReportConfig{Enabled: true}
	example.Scan.SubmitPrefix = []string{"ip14"}
	applyDefaults(example)

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// String renders a short description for logs.
func (c *Config) String() string {
	return fmt.Sprintf("config(version=%s, log=%s/%s)", c.Version, c.Logging.Level, c.Logging.Format)
}
