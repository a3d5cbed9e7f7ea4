package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"auditflow/internal/chat"
	"auditflow/internal/session"
)

func newChatCommand(cmdCtx *commandContext) *cobra.Command {
	var sessionFlag string

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask questions about a completed audit",
		Long: `Ask questions about a completed audit.

With a question argument the answer is printed and the command exits.
Without one an interactive prompt reads questions until EOF.`,
		Args: cobra.MaximumNArgs(1),
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
				return fmt.Errorf("session %s is %s; chat opens once the audit completes", sessionID, status.State)
			}

			channel := chat.NewChannel(client, store, cmdCtx.ensureLogger())
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				return askOnce(cmd, channel, args[0])
			}

			channel.Welcome()
			for _, msg := range channel.Messages() {
				printChatMessage(out, msg)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				if err := askOnce(cmd, channel, scanner.Text()); err != nil {
					if errors.Is(err, chat.ErrEmptyMessage) {
						continue
					}
					return err
				}
			}
		},
	}

	cmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "Session identifier (defaults to the most recent session)")
	return cmd
}

func askOnce(cmd *cobra.Command, channel *chat.Channel, question string) error {
	reply, err := channel.Send(cmd.Context(), question)
	if err != nil {
		return err
	}
	printChatMessage(cmd.OutOrStdout(), reply)
	return nil
}

func printChatMessage(out io.Writer, msg chat.Message) {
	fmt.Fprintln(out, msg.Content)
	for _, source := range msg.Sources {
		line := source.URL
		if strings.TrimSpace(source.Section) != "" {
			line += " (" + source.Section + ")"
		}
		fmt.Fprintf(out, "  source: %s\n", line)
	}
}
