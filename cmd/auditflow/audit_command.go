package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"

	"auditflow/internal/api"
	"auditflow/internal/history"
	"auditflow/internal/logging"
	"auditflow/internal/metrics"
	"auditflow/internal/session"
	"auditflow/internal/watch"
)

func newAuditCommand(cmdCtx *commandContext) *cobra.Command {
	var maxDepth int
	var maxURLs int
	var lighthouse bool
	var noWatch bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Start a website audit and watch it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := cmdCtx.configValue()
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}

			target := strings.TrimSpace(args[0])
			req := api.AuditRequest{
				URL:               target,
				MaxDepth:          maxDepth,
				MaxURLs:           maxURLs,
				IncludeLighthouse: lighthouse,
			}
			if req.MaxDepth == 0 {
				req.MaxDepth = cfg.Audit.MaxDepth
			}
			if req.MaxURLs == 0 {
				req.MaxURLs = cfg.Audit.MaxURLs
			}
			if !cmd.Flags().Changed("lighthouse") {
				req.IncludeLighthouse = cfg.Audit.IncludeLighthouse
			}

			initial, err := client.StartAudit(ctx, req)
			if err != nil {
				return fmt.Errorf("start audit: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started audit session %s for %s\n", initial.SessionID, target)

			if histErr := cmdCtx.withHistory(func(store *history.Store) error {
				_, err := store.Record(ctx, initial.SessionID, target)
				return err
			}); histErr != nil {
				cmdCtx.ensureLogger().Warn("record session", logging.Error(histErr))
			}

			if noWatch {
				fmt.Fprintf(out, "Check progress with `auditflow status %s`\n", initial.SessionID)
				return nil
			}

			release, err := acquireWatchLock(cfg.Paths.StateDir, initial.SessionID)
			if err != nil {
				return err
			}
			defer release()

			store := session.New()
			store.SetSessionID(initial.SessionID)
			store.SetAudit(*initial)

			final, err := watchAudit(cmd, cmdCtx, client, store)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, final)
			}
			printAuditResult(cmd, store, final)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum crawl depth (defaults to configuration)")
	cmd.Flags().IntVar(&maxURLs, "max-urls", 0, "Maximum number of pages to crawl (defaults to configuration)")
	cmd.Flags().BoolVar(&lighthouse, "lighthouse", false, "Request Lighthouse scores for each page")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Start the audit and return without watching it")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the final audit status as JSON")
	return cmd
}

// watchAudit polls the session to a terminal state, echoing progress. On a
// terminal a live progress bar is rendered; elsewhere each change prints one
// line. A failed audit is reported but still recorded in history.
func watchAudit(cmd *cobra.Command, cmdCtx *commandContext, client *api.Client, store *session.Store) (*api.AuditStatus, error) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	watcher := watch.NewAudit(client, store, cmdCtx.ensureLogger(), cmdCtx.auditSettings())
	finish := func() {}
	if shouldColorize(out) {
		pw := progress.NewWriter()
		pw.SetOutputWriter(out)
		pw.SetTrackerLength(30)
		pw.SetUpdateFrequency(250 * time.Millisecond)
		tracker := &progress.Tracker{Message: "Auditing", Total: 100}
		pw.AppendTracker(tracker)
		go pw.Render()

		watcher.OnUpdate = func(status api.AuditStatus) {
			if status.Message != "" {
				tracker.UpdateMessage(status.Message)
			}
			tracker.SetValue(int64(status.Progress))
		}
		finish = func() {
			tracker.MarkAsDone()
			pw.Stop()
		}
	} else {
		var lastLine string
		watcher.OnUpdate = func(status api.AuditStatus) {
			line := renderAuditProgress(status)
			if line != lastLine {
				fmt.Fprintln(out, line)
				lastLine = line
			}
		}
	}

	final, err := watcher.Run(ctx)
	finish()
	if final != nil {
		pages := 0
		if result := store.Result(); result != nil {
			pages = len(result.Items)
		}
		cmdCtx.recordSessionStatus(ctx, store.SessionID(), store.RootURL(), string(final.State), pages)
	}
	// A service-reported failure comes back as *watch.AuditFailedError so
	// main can exit with a distinct code.
	if err != nil {
		return nil, err
	}
	return final, nil
}

func printAuditResult(cmd *cobra.Command, store *session.Store, final *api.AuditStatus) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderStatusLine("audit", auditStateKind(final.State), string(final.State), colorize))

	summary := metrics.Derive(store.Result())
	for _, block := range renderSummaryTables(summary) {
		fmt.Fprintln(out, block)
	}
	if store.LLMSText() != "" {
		fmt.Fprintf(out, "llms.txt content available; export it with `auditflow llmstxt %s`\n", store.SessionID())
	}
}
