package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"auditflow/internal/history"
)

func newSessionsCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded audit sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var entries []*history.Entry
			err := cmdCtx.withHistory(func(store *history.Store) error {
				var err error
				entries, err = store.List(ctx, limit)
				return err
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}

			rows := make([]table.Row, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, table.Row{
					entry.SessionID,
					entry.RootURL,
					entry.Status,
					formatCount(entry.Pages),
					entry.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderListingTable(
				table.Row{"Session", "URL", "Status", "Pages", "Updated"},
				rows, 4,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print sessions as JSON")
	return cmd
}
