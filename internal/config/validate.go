package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateService() error {
	base := strings.TrimSpace(c.Service.BaseURL)
	if base == "" {
		return errors.New("service.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("service.base_url %q is not a valid URL", base)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("service.base_url scheme %q must be http or https", parsed.Scheme)
	}
	return nil
}

func (c *Config) validatePolling() error {
	if c.Audit.PollIntervalSeconds <= 0 {
		return errors.New("audit.poll_interval_seconds must be positive")
	}
	if c.Benchmark.PollIntervalSeconds <= 0 {
		return errors.New("benchmark.poll_interval_seconds must be positive")
	}
	if c.Polling.BackoffCapSeconds < c.Audit.PollIntervalSeconds {
		return errors.New("polling.backoff_cap_seconds must be at least the audit poll interval")
	}
	if c.Polling.MaxPollFailures <= 0 {
		return errors.New("polling.max_poll_failures must be positive")
	}
	if c.Audit.MaxDepth <= 0 {
		return errors.New("audit.max_depth must be positive")
	}
	if c.Audit.MaxURLs <= 0 {
		return errors.New("audit.max_urls must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir is required")
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		return errors.New("paths.report_dir is required")
	}
	return nil
}
