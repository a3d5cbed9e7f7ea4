package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"auditflow/internal/watch"
)

// Exit codes: 1 for usage and transport errors, 2 when the service itself
// reports the audit failed. Scripts can tell a broken invocation from a
// broken site.
const (
	exitError       = 1
	exitAuditFailed = 2
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "auditflow:", err)
	}
	var failed *watch.AuditFailedError
	if errors.As(err, &failed) {
		os.Exit(exitAuditFailed)
	}
	os.Exit(exitError)
}
