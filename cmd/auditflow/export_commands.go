package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"auditflow/internal/api"
	"auditflow/internal/metrics"
	"auditflow/internal/report"
	"auditflow/internal/session"
)

func newExportCommand(cmdCtx *commandContext) *cobra.Command {
	var sessionFlag string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the audit snapshot for a session to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessionID, err := cmdCtx.resolveSessionID(ctx, sessionFlag)
			if err != nil {
				return err
			}
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}

			status, err := client.AuditStatus(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}
			store := session.New()
			store.SetSessionID(sessionID)
			store.SetAudit(*status)
			if !store.AuditCompleted() {
				return fmt.Errorf("session %s is %s; export requires a completed audit", sessionID, status.State)
			}

			snap := report.Snapshot{
				RootURL:     store.RootURL(),
				GeneratedAt: time.Now().UTC(),
				Audit:       store.Result(),
				Metrics:     metrics.Derive(store.Result()),
			}
			// The benchmark section is best effort; a session without one
			// still exports.
			if bench, err := client.BenchmarkStatus(ctx, sessionID); err == nil && bench.State != api.BenchmarkNotStarted {
				snap.Benchmark = bench
			}

			dir := outputDir
			if dir == "" {
				dir = cmdCtx.configValue().Paths.ReportDir
			}
			path, err := report.WriteSnapshot(dir, sessionID, snap)
			if err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote snapshot to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "Session identifier (defaults to the most recent session)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory (defaults to the configured report directory)")
	return cmd
}

func newLLMSTxtCommand(cmdCtx *commandContext) *cobra.Command {
	var outputDir string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "llmstxt [session-id]",
		Short: "Export the generated llms.txt content for a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var explicit string
			if len(args) == 1 {
				explicit = args[0]
			}
			sessionID, err := cmdCtx.resolveSessionID(ctx, explicit)
			if err != nil {
				return err
			}
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}

			status, err := client.AuditStatus(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}
			if status.LLMSText == "" {
				return fmt.Errorf("session %s has no llms.txt content", sessionID)
			}

			if printOnly {
				fmt.Fprint(cmd.OutOrStdout(), status.LLMSText)
				return nil
			}

			dir := outputDir
			if dir == "" {
				dir = cmdCtx.configValue().Paths.ReportDir
			}
			path, err := report.WriteLLMSText(dir, sessionID, status.LLMSText)
			if err != nil {
				return fmt.Errorf("write llms.txt: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote llms.txt to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory (defaults to the configured report directory)")
	cmd.Flags().BoolVar(&printOnly, "stdout", false, "Print the content instead of writing a file")
	return cmd
}
