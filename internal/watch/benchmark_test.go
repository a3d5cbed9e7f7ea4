package watch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"auditflow/internal/api"
	"auditflow/internal/session"
)

func completedStore(id string) *session.Store {
	store := session.New()
	store.SetAudit(api.AuditStatus{SessionID: id, State: api.AuditCompleted, Progress: 100})
	return store
}

func benchJSON(t *testing.T, bench api.Benchmark) func(w http.ResponseWriter) {
	t.Helper()
	return func(w http.ResponseWriter) {
		if err := json.NewEncoder(w).Encode(bench); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func newBenchmarkWatcher(server *httptest.Server, store *session.Store, settings Settings) (*Benchmark, *[]time.Duration) {
	client := api.NewClient(api.Config{BaseURL: server.URL})
	watcher := NewBenchmark(client, store, nil, settings)
	delays := new([]time.Duration)
	watcher.sleeper = func(d time.Duration) { *delays = append(*delays, d) }
	return watcher, delays
}

func TestBenchmarkStartRefusedBeforeCompletion(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	store := session.New()
	store.SetAudit(api.AuditStatus{SessionID: "abc123", State: api.AuditRunning, Progress: 40})
	watcher, _ := newBenchmarkWatcher(server, store, Settings{})

	if _, err := watcher.Start(context.Background(), nil); !errors.Is(err, session.ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
	if requests.Load() != 0 {
		t.Fatalf("no request may be issued, saw %d", requests.Load())
	}
}

func TestBenchmarkStartStoresImmediateResponse(t *testing.T) {
	server := scriptedServer(t, nil,
		benchJSON(t, api.Benchmark{SessionID: "abc123", State: api.BenchmarkRunning}),
	)
	defer server.Close()

	store := completedStore("abc123")
	watcher, _ := newBenchmarkWatcher(server, store, Settings{})

	bench, err := watcher.Start(context.Background(), nil)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if bench.State != api.BenchmarkRunning {
		t.Fatalf("state %q", bench.State)
	}
	if store.Benchmark().State != api.BenchmarkRunning {
		t.Fatal("immediate response not stored")
	}
}

func TestBenchmarkStartFailureLeavesStateRetriable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverError(w)
	}))
	defer server.Close()

	store := completedStore("abc123")
	watcher, _ := newBenchmarkWatcher(server, store, Settings{})

	if _, err := watcher.Start(context.Background(), nil); err == nil {
		t.Fatal("expected transport error")
	}
	if store.Benchmark().State != api.BenchmarkNotStarted {
		t.Fatalf("state %q, want not_started after failed start", store.Benchmark().State)
	}
}

func TestBenchmarkRunPollsAtFixedSpacingUntilTerminal(t *testing.T) {
	var requests atomic.Int64
	server := scriptedServer(t, &requests,
		benchJSON(t, api.Benchmark{SessionID: "abc123", State: api.BenchmarkRunning}),
		benchJSON(t, api.Benchmark{SessionID: "abc123", State: api.BenchmarkRunning}),
		benchJSON(t, api.Benchmark{
			SessionID:     "abc123",
			State:         api.BenchmarkCompleted,
			CrawledPages:  7,
			IndexedChunks: 7,
			OverallScores: &api.OverallScores{AnswerabilityRate: 0.8, CitationCoverage: 0.8, Completeness: 0.8},
		}),
	)
	defer server.Close()

	store := completedStore("abc123")
	store.SetBenchmark(api.Benchmark{SessionID: "abc123", State: api.BenchmarkRunning})
	watcher, delays := newBenchmarkWatcher(server, store, Settings{})

	bench, err := watcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if bench.State != api.BenchmarkCompleted || bench.CrawledPages != 7 {
		t.Fatalf("unexpected benchmark: %+v", bench)
	}
	if requests.Load() != 3 {
		t.Fatalf("requests = %d, want 3 (none after terminal)", requests.Load())
	}
	for i, delay := range *delays {
		if delay != defaultBenchmarkInterval {
			t.Fatalf("delay[%d] = %v, want %v", i, delay, defaultBenchmarkInterval)
		}
	}
	if len(*delays) != 3 {
		t.Fatalf("sleep count = %d, want 3", len(*delays))
	}
	if store.Benchmark().OverallScores == nil {
		t.Fatal("final benchmark not stored")
	}
}

func TestBenchmarkRunPreservesStateThroughPollFailure(t *testing.T) {
	server := scriptedServer(t, nil,
		func(w http.ResponseWriter) { serverError(w) },
		benchJSON(t, api.Benchmark{SessionID: "abc123", State: api.BenchmarkCompleted}),
	)
	defer server.Close()

	store := completedStore("abc123")
	running := api.Benchmark{SessionID: "abc123", State: api.BenchmarkRunning}
	store.SetBenchmark(running)
	watcher, _ := newBenchmarkWatcher(server, store, Settings{})

	var statesDuringFailure []api.BenchmarkState
	watcher.OnUpdate = func(bench api.Benchmark) {
		statesDuringFailure = append(statesDuringFailure, bench.State)
	}

	bench, err := watcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if bench.State != api.BenchmarkCompleted {
		t.Fatalf("final state %q", bench.State)
	}
	// The failed poll produced no store write; only the terminal poll did.
	if len(statesDuringFailure) != 1 || statesDuringFailure[0] != api.BenchmarkCompleted {
		t.Fatalf("updates %v", statesDuringFailure)
	}
}

func TestBenchmarkRunReturnsImmediatelyWhenAlreadyTerminal(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	store := completedStore("abc123")
	store.SetBenchmark(api.Benchmark{SessionID: "abc123", State: api.BenchmarkFailed, Error: "no pages"})
	watcher, _ := newBenchmarkWatcher(server, store, Settings{})

	bench, err := watcher.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if bench.State != api.BenchmarkFailed {
		t.Fatalf("state %q", bench.State)
	}
	if requests.Load() != 0 {
		t.Fatalf("no request expected, saw %d", requests.Load())
	}
}
