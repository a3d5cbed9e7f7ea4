package watch

import (
	"context"
	"time"
)

const (
	defaultAuditInterval     = 2 * time.Second
	defaultBenchmarkInterval = 3 * time.Second
	defaultBackoffCap        = 30 * time.Second
	defaultMaxFailures       = 5
)

// Settings controls poll cadence and the transport-failure retry policy.
// Zero values fall back to the watcher's defaults.
type Settings struct {
	// Interval is the delay between successful status polls.
	Interval time.Duration
	// BackoffCap bounds the exponential backoff applied after poll failures.
	BackoffCap time.Duration
	// MaxFailures is the number of consecutive poll failures tolerated
	// before the watcher gives up.
	MaxFailures int
}

func (s Settings) withDefaults(interval time.Duration) Settings {
	if s.Interval <= 0 {
		s.Interval = interval
	}
	if s.BackoffCap <= 0 {
		s.BackoffCap = defaultBackoffCap
	}
	if s.BackoffCap < s.Interval {
		s.BackoffCap = s.Interval
	}
	if s.MaxFailures <= 0 {
		s.MaxFailures = defaultMaxFailures
	}
	return s
}

// backoffDelay returns the delay before retry number `failures`, doubling
// from the poll interval and capped by BackoffCap.
func (s Settings) backoffDelay(failures int) time.Duration {
	delay := s.Interval
	for i := 1; i < failures; i++ {
		if delay > s.BackoffCap/2 {
			return s.BackoffCap
		}
		delay *= 2
	}
	if delay > s.BackoffCap {
		return s.BackoffCap
	}
	return delay
}

// sleep waits for the given delay or until the context is cancelled. The
// sleeper override makes poll timing deterministic in tests.
func sleep(ctx context.Context, delay time.Duration, sleeper func(time.Duration)) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if sleeper != nil {
		sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
