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

// Benchmark starts and polls the LLM-readiness benchmark for a session whose
// audit has completed.
type Benchmark struct {
	client   *api.Client
	store    *session.Store
	logger   *slog.Logger
	settings Settings

	// OnUpdate, when set, observes every stored benchmark state in poll order.
	OnUpdate func(api.Benchmark)

	sleeper func(time.Duration)
}

// NewBenchmark constructs a benchmark watcher for the store's session.
func NewBenchmark(client *api.Client, store *session.Store, logger *slog.Logger, settings Settings) *Benchmark {
	return &Benchmark{
		client:   client,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "benchmark-watch"),
		settings: settings.withDefaults(defaultBenchmarkInterval),
	}
}

// Start issues the benchmark start call and stores the immediate response.
// It refuses to run before the audit completes. A transport failure leaves
// the stored state untouched so the caller can simply retry.
func (w *Benchmark) Start(ctx context.Context, queries []string) (*api.Benchmark, error) {
	if !w.store.AuditCompleted() {
		return nil, session.ErrNotCompleted
	}
	sessionID := w.store.SessionID()

	bench, err := w.client.StartBenchmark(ctx, sessionID, queries)
	if err != nil {
		return nil, fmt.Errorf("benchmark start: %w", err)
	}
	w.store.SetBenchmark(*bench)
	if w.OnUpdate != nil {
		w.OnUpdate(*bench)
	}
	w.logger.Info("benchmark started",
		logging.String(logging.FieldSessionID, sessionID),
		logging.Int("queries", len(queries)),
	)
	return bench, nil
}

// Run polls the benchmark status until it reaches a terminal state, the
// retry budget is exhausted, or ctx is cancelled. Each successful poll
// replaces the stored benchmark wholesale; a failed poll is logged and
// retried with backoff while the previous state stays in place.
func (w *Benchmark) Run(ctx context.Context) (*api.Benchmark, error) {
	sessionID := w.store.SessionID()
	if sessionID == "" {
		return nil, errors.New("benchmark watch: no active session")
	}

	if current := w.store.Benchmark(); current.State.Terminal() {
		return &current, nil
	}

	// The start call already reported the current state, so the first
	// status poll happens one interval later.
	if err := sleep(ctx, w.settings.Interval, w.sleeper); err != nil {
		return nil, err
	}

	failures := 0
	for {
		bench, err := w.client.BenchmarkStatus(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			w.logger.Warn("benchmark status poll failed",
				logging.String(logging.FieldSessionID, sessionID),
				logging.Int("consecutive_failures", failures),
				logging.Error(err),
			)
			if failures >= w.settings.MaxFailures {
				return nil, fmt.Errorf("benchmark watch: giving up after %d consecutive poll failures: %w", failures, err)
			}
			if err := sleep(ctx, w.settings.backoffDelay(failures), w.sleeper); err != nil {
				return nil, err
			}
			continue
		}
		failures = 0

		w.store.SetBenchmark(*bench)
		if w.OnUpdate != nil {
			w.OnUpdate(*bench)
		}

		if bench.State.Terminal() {
			w.logger.Info("benchmark reached terminal state",
				logging.String(logging.FieldSessionID, sessionID),
				logging.String("state", string(bench.State)),
			)
			return bench, nil
		}

		if err := sleep(ctx, w.settings.Interval, w.sleeper); err != nil {
			return nil, err
		}
	}
}
