package config

const (
	defaultServiceBaseURL        = "http://localhost:8000"
	defaultRequestTimeoutSeconds = 30
	defaultAuditPollSeconds      = 2
	defaultBenchmarkPollSeconds  = 3
	defaultAuditMaxDepth         = 3
	defaultAuditMaxURLs          = 20
	defaultBackoffCapSeconds     = 30
	defaultMaxPollFailures       = 5
	defaultStateDir              = "~/.local/share/auditflow"
	defaultReportDir             = "~/.local/share/auditflow/reports"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Service: Service{
			BaseURL:        defaultServiceBaseURL,
			TimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Audit: Audit{
			PollIntervalSeconds: defaultAuditPollSeconds,
			MaxDepth:            defaultAuditMaxDepth,
			MaxURLs:             defaultAuditMaxURLs,
		},
		Benchmark: Benchmark{
			PollIntervalSeconds: defaultBenchmarkPollSeconds,
		},
		Polling: Polling{
			BackoffCapSeconds: defaultBackoffCapSeconds,
			MaxPollFailures:   defaultMaxPollFailures,
		},
		Paths: Paths{
			StateDir:  defaultStateDir,
			ReportDir: defaultReportDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
