package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"auditflow/internal/api"
	"auditflow/internal/session"
	"auditflow/internal/watch"
)

func newBenchmarkCommand(cmdCtx *commandContext) *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run answerability benchmarks against a completed audit",
	}

	benchCmd.AddCommand(newBenchmarkRunCommand(cmdCtx))
	benchCmd.AddCommand(newBenchmarkStatusCommand(cmdCtx))
	benchCmd.AddCommand(newBenchmarkQuestionsCommand(cmdCtx))

	return benchCmd
}

func newBenchmarkRunCommand(cmdCtx *commandContext) *cobra.Command {
	var sessionFlag string
	var queries []string
	var questionsFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a benchmark and watch it to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessionID, err := cmdCtx.resolveSessionID(ctx, sessionFlag)
			if err != nil {
				return err
			}
			if questionsFile != "" {
				fromFile, err := readQuestionsFile(questionsFile)
				if err != nil {
					return err
				}
				queries = append(queries, fromFile...)
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

			cfg := cmdCtx.configValue()
			release, err := acquireWatchLock(cfg.Paths.StateDir, sessionID)
			if err != nil {
				return err
			}
			defer release()

			watcher := watch.NewBenchmark(client, store, cmdCtx.ensureLogger(), cmdCtx.benchmarkSettings())

			// nil means "use the service's default question set".
			var startQueries []string
			if len(queries) > 0 {
				startQueries = queries
			}
			if _, err := watcher.Start(ctx, startQueries); err != nil {
				if errors.Is(err, session.ErrNotCompleted) {
					return fmt.Errorf("session %s is %s; benchmarks run once the audit completes", sessionID, status.State)
				}
				return fmt.Errorf("start benchmark: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started benchmark for session %s\n", sessionID)

			var lastState api.BenchmarkState
			watcher.OnUpdate = func(bench api.Benchmark) {
				if bench.State != lastState {
					fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "benchmark:", bench.State)
					lastState = bench.State
				}
			}

			final, err := watcher.Run(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, final)
			}
			printBenchmark(cmd, final)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "Session identifier (defaults to the most recent session)")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Benchmark question (repeatable; omit to use the service defaults)")
	cmd.Flags().StringVar(&questionsFile, "questions-file", "", "File with one benchmark question per line")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the benchmark result as JSON")
	return cmd
}

// readQuestionsFile loads one question per line, skipping blanks.
func readQuestionsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var questions []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			questions = append(questions, trimmed)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("questions file %s is empty", path)
	}
	return questions, nil
}

func newBenchmarkStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var sessionFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current benchmark state for a session",
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

			bench, err := client.BenchmarkStatus(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("fetch benchmark status: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, bench)
			}
			printBenchmark(cmd, bench)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "Session identifier (defaults to the most recent session)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the benchmark status as JSON")
	return cmd
}

func newBenchmarkQuestionsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the service's default benchmark questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}
			list, err := client.BenchmarkQuestions(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch questions: %w", err)
			}
			out := cmd.OutOrStdout()
			for i, question := range list.Questions {
				fmt.Fprintf(out, "%2d. %s\n", i+1, question)
			}
			return nil
		},
	}
}

func printBenchmark(cmd *cobra.Command, bench *api.Benchmark) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderStatusLine("benchmark", benchmarkStateKind(bench.State), string(bench.State), colorize))
	if bench.Error != "" {
		fmt.Fprintln(out, renderStatusLine("error", statusError, bench.Error, colorize))
	}
	for _, block := range renderBenchmarkTables(bench) {
		fmt.Fprintln(out, block)
	}
	if len(bench.MissingTopics) > 0 {
		fmt.Fprintln(out, "Missing topics:")
		for _, topic := range bench.MissingTopics {
			fmt.Fprintf(out, "  - %s\n", topic)
		}
	}
}
