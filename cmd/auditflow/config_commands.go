package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"auditflow/internal/config"
)

func newConfigCommand(cmdCtx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(cmdCtx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", cmdCtx.configPath)
			if !cmdCtx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Service URL:        %s\n", cfg.Service.BaseURL)
			fmt.Fprintf(out, "Request timeout:    %ds\n", cfg.Service.TimeoutSeconds)
			fmt.Fprintf(out, "Audit poll:         %ds\n", cfg.Audit.PollIntervalSeconds)
			fmt.Fprintf(out, "Benchmark poll:     %ds\n", cfg.Benchmark.PollIntervalSeconds)
			fmt.Fprintf(out, "Backoff cap:        %ds\n", cfg.Polling.BackoffCapSeconds)
			fmt.Fprintf(out, "Max poll failures:  %d\n", cfg.Polling.MaxPollFailures)
			fmt.Fprintf(out, "Crawl depth:        %d\n", cfg.Audit.MaxDepth)
			fmt.Fprintf(out, "Crawl max URLs:     %d\n", cfg.Audit.MaxURLs)
			fmt.Fprintf(out, "Lighthouse:         %s\n", yesNo(cfg.Audit.IncludeLighthouse))
			fmt.Fprintf(out, "State dir:          %s\n", cfg.Paths.StateDir)
			fmt.Fprintf(out, "Report dir:         %s\n", cfg.Paths.ReportDir)
			fmt.Fprintf(out, "Log level:          %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "Log format:         %s\n", cfg.Logging.Format)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if overwrite {
				if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove existing config: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point base_url at your audit service before running auditflow.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}
