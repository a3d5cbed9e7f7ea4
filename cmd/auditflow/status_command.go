package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"auditflow/internal/metrics"
	"auditflow/internal/session"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var watchFlag bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status [session-id]",
		Short: "Show the current status of an audit session",
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

			store := session.New()
			store.SetSessionID(sessionID)

			if watchFlag {
				cfg := cmdCtx.configValue()
				release, err := acquireWatchLock(cfg.Paths.StateDir, sessionID)
				if err != nil {
					return err
				}
				defer release()

				final, err := watchAudit(cmd, cmdCtx, client, store)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, final)
				}
				printAuditResult(cmd, store, final)
				return nil
			}

			status, err := client.AuditStatus(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}
			store.SetAudit(*status)

			pages := 0
			if result := store.Result(); result != nil {
				pages = len(result.Items)
			}
			cmdCtx.recordSessionStatus(ctx, sessionID, store.RootURL(), string(status.State), pages)

			if jsonOutput {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Session "+sessionID, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("audit", auditStateKind(status.State), string(status.State), colorize))
			fmt.Fprintln(out, renderAuditProgress(*status))
			if status.Error != "" {
				fmt.Fprintln(out, renderStatusLine("error", statusError, status.Error, colorize))
			}
			for _, block := range renderSummaryTables(metrics.Derive(store.Result())) {
				fmt.Fprintln(out, block)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watchFlag, "watch", false, "Poll the session until it reaches a terminal state")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the status as JSON")
	return cmd
}
