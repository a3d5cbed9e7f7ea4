package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"auditflow/internal/api"
	"auditflow/internal/logging"
	"auditflow/internal/session"
)

// AuditFailedError reports a service-side terminal audit failure.
type AuditFailedError struct {
	SessionID string
	Message   string
}

func (e *AuditFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("audit %s failed", e.SessionID)
	}
	return fmt.Sprintf("audit %s failed: %s", e.SessionID, e.Message)
}

// Audit polls one session's audit status until it reaches a terminal state,
// writing every response into the session store.
type Audit struct {
	client   *api.Client
	store    *session.Store
	logger   *slog.Logger
	settings Settings

	// OnUpdate, when set, observes every stored status in poll order.
	OnUpdate func(api.AuditStatus)

	sleeper func(time.Duration)
}

// NewAudit constructs an audit watcher for the store's session.
func NewAudit(client *api.Client, store *session.Store, logger *slog.Logger, settings Settings) *Audit {
	return &Audit{
		client:   client,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "audit-watch"),
		settings: settings.withDefaults(defaultAuditInterval),
	}
}

// Run polls until the audit completes, fails, the retry budget is exhausted,
// or ctx is cancelled. The first fetch is immediate. The terminal status is
// returned on completion; a service-reported failure returns the status
// alongside an *AuditFailedError.
func (w *Audit) Run(ctx context.Context) (*api.AuditStatus, error) {
	sessionID := w.store.SessionID()
	if sessionID == "" {
		return nil, errors.New("audit watch: no active session")
	}

	failures := 0
	for {
		status, err := w.client.AuditStatus(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			w.logger.Warn("audit status poll failed",
				logging.String(logging.FieldSessionID, sessionID),
				logging.Int("consecutive_failures", failures),
				logging.Error(err),
			)
			if failures >= w.settings.MaxFailures {
				return nil, fmt.Errorf("audit watch: giving up after %d consecutive poll failures: %w", failures, err)
			}
			if err := sleep(ctx, w.settings.backoffDelay(failures), w.sleeper); err != nil {
				return nil, err
			}
			continue
		}
		failures = 0

		w.store.SetAudit(*status)
		if w.OnUpdate != nil {
			w.OnUpdate(*status)
		}

		if status.State.Terminal() {
			w.logger.Info("audit reached terminal state",
				logging.String(logging.FieldSessionID, sessionID),
				logging.String("state", string(status.State)),
			)
			if status.State == api.AuditFailed {
				return status, &AuditFailedError{SessionID: sessionID, Message: status.Error}
			}
			return status, nil
		}

		if err := sleep(ctx, w.settings.Interval, w.sleeper); err != nil {
			return nil, err
		}
	}
}
