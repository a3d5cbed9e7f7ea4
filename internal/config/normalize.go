package config

import "strings"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeService()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	stateDir, err := expandPath(strings.TrimSpace(c.Paths.StateDir))
	if err != nil {
		return err
	}
	c.Paths.StateDir = stateDir

	reportDir, err := expandPath(strings.TrimSpace(c.Paths.ReportDir))
	if err != nil {
		return err
	}
	c.Paths.ReportDir = reportDir
	return nil
}

func (c *Config) normalizeService() {
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	if c.Service.TimeoutSeconds <= 0 {
		c.Service.TimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
