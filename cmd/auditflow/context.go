package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"auditflow/internal/api"
	"auditflow/internal/config"
	"auditflow/internal/history"
	"auditflow/internal/logging"
	"auditflow/internal/watch"
)

type commandContext struct {
	configFlag  *string
	baseURLFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, baseURLFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		baseURLFlag: baseURLFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath = resolvedPath
		c.configExists = exists
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.baseURLFlag != nil && strings.TrimSpace(*c.baseURLFlag) != "" {
			cfg.Service.BaseURL = strings.TrimSpace(*c.baseURLFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.NewClient(api.Config{
		BaseURL:        cfg.Service.BaseURL,
		TimeoutSeconds: cfg.Service.TimeoutSeconds,
	}), nil
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.Paths.StateDir)
}

// withHistory runs fn against the history store and closes it afterwards.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	store, err := c.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// resolveSessionID returns the explicit session identifier when given,
// otherwise the most recently recorded one.
func (c *commandContext) resolveSessionID(ctx context.Context, explicit string) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		return explicit, nil
	}

	var resolved string
	err := c.withHistory(func(store *history.Store) error {
		entry, err := store.MostRecent(ctx)
		if err != nil {
			return err
		}
		if entry == nil {
			return errors.New("no session id given and no sessions recorded; run `auditflow audit <url>` first")
		}
		resolved = entry.SessionID
		return nil
	})
	if err != nil {
		return "", err
	}
	return resolved, nil
}

func (c *commandContext) auditSettings() watch.Settings {
	cfg := c.configValue()
	if cfg == nil {
		return watch.Settings{}
	}
	return watch.Settings{
		Interval:    time.Duration(cfg.Audit.PollIntervalSeconds) * time.Second,
		BackoffCap:  time.Duration(cfg.Polling.BackoffCapSeconds) * time.Second,
		MaxFailures: cfg.Polling.MaxPollFailures,
	}
}

func (c *commandContext) benchmarkSettings() watch.Settings {
	cfg := c.configValue()
	if cfg == nil {
		return watch.Settings{}
	}
	return watch.Settings{
		Interval:    time.Duration(cfg.Benchmark.PollIntervalSeconds) * time.Second,
		BackoffCap:  time.Duration(cfg.Polling.BackoffCapSeconds) * time.Second,
		MaxFailures: cfg.Polling.MaxPollFailures,
	}
}

// recordSessionStatus mirrors a status change into the local history,
// inserting the session first when it was started elsewhere. History errors
// are logged, never allowed to mask the primary result.
func (c *commandContext) recordSessionStatus(ctx context.Context, sessionID, rootURL, status string, pages int) {
	err := c.withHistory(func(store *history.Store) error {
		entry, err := store.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if entry == nil {
			if _, err := store.Record(ctx, sessionID, rootURL); err != nil {
				return err
			}
		}
		return store.SetStatus(ctx, sessionID, status, pages)
	})
	if err != nil {
		c.ensureLogger().Warn("record session status",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err),
		)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
