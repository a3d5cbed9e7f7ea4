package session

import (
	"errors"
	"sync"

	"auditflow/internal/api"
)

// ErrNotCompleted gates the workflows that require a successful audit:
// the chat channel and the benchmark run both refuse to start until the
// session's audit reaches the completed state.
var ErrNotCompleted = errors.New("audit session not completed")

// Store holds the latest known state for one audit session. It is the only
// mutable state shared between the watchers, the chat channel, and the CLI.
// Every setter replaces a whole field; readers get the last written value and
// must re-read rather than assume consistency across fields.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	rootURL   string
	audit     api.AuditStatus
	result    *api.AuditResult
	llmsText  string
	benchmark api.Benchmark
}

// New constructs an empty store. The benchmark state starts as not_started,
// matching a session the service has never benchmarked.
func New() *Store {
	return &Store{
		benchmark: api.Benchmark{State: api.BenchmarkNotStarted},
	}
}

// SetSessionID records the session identity this store tracks.
func (s *Store) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

// SessionID returns the tracked session id, empty when no session is active.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// SetAudit replaces the audit status. When the status carries a result
// payload, the payload and the scan's root URL are captured as well.
func (s *Store) SetAudit(status api.AuditStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = status
	if status.SessionID != "" {
		s.sessionID = status.SessionID
	}
	if status.AuditData != nil {
		s.result = status.AuditData
		if status.AuditData.Scan.URL != "" {
			s.rootURL = status.AuditData.Scan.URL
		}
	}
	if status.LLMSText != "" {
		s.llmsText = status.LLMSText
	}
}

// Audit returns the latest audit status.
func (s *Store) Audit() api.AuditStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audit
}

// AuditCompleted reports whether the audit reached terminal success. The
// chat channel and the benchmark watcher are gated on this.
func (s *Store) AuditCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audit.State == api.AuditCompleted
}

// Result returns the latest audit result payload, nil before completion.
func (s *Store) Result() *api.AuditResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// RootURL returns the scanned site's root URL, empty until a result arrives.
func (s *Store) RootURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootURL
}

// LLMSText returns the generated llms.txt content, empty when unavailable.
func (s *Store) LLMSText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmsText
}

// SetBenchmark replaces the benchmark state.
func (s *Store) SetBenchmark(bench api.Benchmark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.benchmark = bench
}

// Benchmark returns the latest benchmark state.
func (s *Store) Benchmark() api.Benchmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.benchmark
}
