package config

// Default selectors match the GOV.UK error summary markup and its older
// elements-toolkit variant.
const (
	DefaultSummarySelector = ".error-summary, .govuk-error-summary"
	DefaultHeadingSelector = ".error-summary-heading, .govuk-error-summary__title"
)

const (
	defaultVersion        = "1"
	defaultNATSSubject    = "formtrack.events"
	defaultNATSStream     = "FORMTRACK"
	defaultPublishTimeout = "5s"
	defaultStorePath      = "./formtrack.db"
	defaultServerAddr     = ":8080"
	defaultMaxBodyBytes   = 2 << 20
	defaultWatchDir       = "./pages"
	defaultDebounce       = "500ms"
	defaultReportInterval = "1h"
	defaultReportTop      = 10
)

// applyDefaults fills zero values. It never overrides explicit settings.
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))

	if cfg.Scan.SummarySelector == "" {
		cfg.Scan.SummarySelector = DefaultSummarySelector
	}
	if cfg.Scan.HeadingSelector == "" {
		cfg.Scan.HeadingSelector = DefaultHeadingSelector
	}

	if !cfg.Sinks.Log && !cfg.Sinks.Prometheus && cfg.Sinks.NATS == nil && cfg.Sinks.Store == nil {
		cfg.Sinks.Log = true
	}
	if n := cfg.Sinks.NATS; n != nil {
		if n.Subject == "" {
			n.Subject = defaultNATSSubject
		}
		if n.Stream == "" {
			n.Stream = defaultNATSStream
		}
		if n.PublishTimeout == "" {
			n.PublishTimeout = defaultPublishTimeout
		}
		if n.Burst <= 0 {
			n.Burst = 1
		}
		applyRetryDefaults(&n.Retry)
	}
	if s := cfg.Sinks.Store; s != nil && s.Path == "" {
		s.Path = defaultStorePath
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = defaultMaxBodyBytes
	}

	if cfg.Watch.Dir == "" {
		cfg.Watch.Dir = defaultWatchDir
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce
	}

	if cfg.Report.Interval == "" {
		cfg.Report.Interval = defaultReportInterval
	}
	if cfg.Report.Top <= 0 {
		cfg.Report.Top = defaultReportTop
	}
}

func applyRetryDefaults(r *RetryConfig) {
	if r.Mode == "" {
		r.Mode = RetryBackoffExponential
	} else if m := NormalizeRetryBackoff(string(r.Mode)); m != "" {
		r.Mode = m
	}
	if r.Initial == "" {
		r.Initial = "200ms"
	}
	if r.Max == "" {
		r.Max = "5s"
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = 3
	}
}
