package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the audit service's health and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdCtx.apiClient()
			if err != nil {
				return err
			}
			health, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}

			if jsonOutput {
				return writeJSON(cmd, health)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			kind := statusOK
			if health.Status != "healthy" {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("service", kind, health.Status, colorize))
			fmt.Fprintln(out, renderStatusLine("openai", boolKind(health.OpenAIConfigured), yesNo(health.OpenAIConfigured), colorize))
			fmt.Fprintln(out, renderStatusLine("llms.txt", boolKind(health.LLMSTxtConfigured), yesNo(health.LLMSTxtConfigured), colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the health status as JSON")
	return cmd
}

func boolKind(configured bool) statusKind {
	if configured {
		return statusOK
	}
	return statusWarn
}
