package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"

	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	checks := []func() error{
		c.validateScan,
		c.validateNATS,
		c.validateStore,
		c.validateDurations,
		c.validateReport,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateScan() error {
	if strings.TrimSpace(c.Scan.SummarySelector) == "" {
		return invalid("scan.summary_selector", "selector cannot be empty")
	}
	if strings.TrimSpace(c.Scan.HeadingSelector) == "" {
		return invalid("scan.heading_selector", "selector cannot be empty")
	}
	if _, err := cascadia.ParseGroup(c.Scan.SummarySelector); err != nil {
		return invalid("scan.summary_selector", err.Error())
	}
	if _, err := cascadia.ParseGroup(c.Scan.HeadingSelector); err != nil {
		return invalid("scan.heading_selector", err.Error())
	}
	for _, p := range c.Scan.SubmitPrefix {
		if strings.TrimSpace(p) == "" {
			return invalid("scan.submit_prefixes", "prefix cannot be empty")
		}
	}
	return nil
}

func (c *Config) validateNATS() error {
	n := c.Sinks.NATS
	if n == nil || !n.Enabled {
		return nil
	}
	if n.URL == "" {
		return invalid("sinks.nats.url", "url is required when nats is enabled")
	}
	u, err := url.Parse(n.URL)
	if err != nil || u.Scheme == "" {
		return invalid("sinks.nats.url", fmt.Sprintf("invalid url %q", n.URL))
	}
	if strings.ContainsAny(n.Subject, " *>") {
		return invalid("sinks.nats.subject", "subject must be a literal token path")
	}
	if n.RatePerSecond < 0 {
		return invalid("sinks.nats.rate_per_second", "must be >= 0")
	}
	if _, ok := retryModes.lookup(string(n.Retry.Mode)); !ok {
		return invalid("sinks.nats.retry.mode", fmt.Sprintf("unknown mode %q", n.Retry.Mode))
	}
	if n.Retry.MaxRetries < 0 {
		return invalid("sinks.nats.retry.max_retries", "must be >= 0")
	}
	return nil
}

func (c *Config) validateStore() error {
	s := c.Sinks.Store
	if s != nil && s.Enabled && strings.TrimSpace(s.Path) == "" {
		return invalid("sinks.store.path", "path is required when the store is enabled")
	}
	return nil
}

func (c *Config) validateDurations() error {
	durations := map[string]string{
		"watch.debounce":  c.Watch.Debounce,
		"report.interval": c.Report.Interval,
	}
	if n := c.Sinks.NATS; n != nil {
		durations["sinks.nats.publish_timeout"] = n.PublishTimeout
		durations["sinks.nats.retry.initial"] = n.Retry.Initial
		durations["sinks.nats.retry.max"] = n.Retry.Max
	}
	for field, raw := range durations {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return invalid(field, fmt.Sprintf("invalid duration %q", raw))
		}
		if d <= 0 {
			return invalid(field, "duration must be positive")
		}
	}
	return nil
}

func (c *Config) validateReport() error {
	if c.Report.Cron != "" {
		if len(strings.Fields(c.Report.Cron)) != 5 {
			return invalid("report.cron", "cron expression must have five fields")
		}
		return nil
	}
	if c.Report.Enabled && c.Report.IntervalDuration() < time.Minute {
		return invalid("report.interval", "interval must be at least 1m")
	}
	return nil
}

func invalid(field, reason string) error {
	return ferrors.ConfigError(reason).WithContext("field", field).Build()
}
