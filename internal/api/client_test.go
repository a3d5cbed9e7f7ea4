package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStartAuditSendsRequestAndDecodesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/audit" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("missing X-Request-ID header")
		}
		var req AuditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.URL != "https://example.com" || req.MaxDepth != 3 {
			t.Fatalf("unexpected request body: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(AuditStatus{
			SessionID: "abc123",
			State:     AuditPending,
			Progress:  0,
			Message:   "Audit started...",
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	status, err := client.StartAudit(context.Background(), AuditRequest{URL: "https://example.com", MaxDepth: 3})
	if err != nil {
		t.Fatalf("StartAudit returned error: %v", err)
	}
	if status.SessionID != "abc123" || status.State != AuditPending {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestAuditStatusNonSuccessIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Session not found"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.AuditStatus(context.Background(), "missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Fatalf("unexpected code %d", statusErr.Code)
	}
	if statusErr.Body == "" {
		t.Fatal("expected body snippet")
	}
}

func TestStartBenchmarkNilQueriesSerializesNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if string(raw["queries"]) != "null" {
			t.Fatalf("queries should be null, got %s", raw["queries"])
		}
		_ = json.NewEncoder(w).Encode(Benchmark{SessionID: "abc123", State: BenchmarkRunning})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	bench, err := client.StartBenchmark(context.Background(), "abc123", nil)
	if err != nil {
		t.Fatalf("StartBenchmark returned error: %v", err)
	}
	if bench.State != BenchmarkRunning {
		t.Fatalf("unexpected state %q", bench.State)
	}
}

func TestStartBenchmarkExplicitQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req BenchmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(req.Queries) != 2 || req.Queries[0] != "What services do you offer?" {
			t.Fatalf("unexpected queries: %v", req.Queries)
		}
		_ = json.NewEncoder(w).Encode(Benchmark{SessionID: req.SessionID, State: BenchmarkRunning})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	queries := []string{"What services do you offer?", "What is your pricing?"}
	if _, err := client.StartBenchmark(context.Background(), "abc123", queries); err != nil {
		t.Fatalf("StartBenchmark returned error: %v", err)
	}
}

func TestChatRequiresSessionAndMessage(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:0"})
	if _, err := client.Chat(context.Background(), "", "question"); err == nil {
		t.Fatal("expected error for empty session id")
	}
	if _, err := client.Chat(context.Background(), "abc123", "  "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestHealthDecodesFlags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"healthy","openai_configured":true,"llmstxt_configured":false}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if health.Status != "healthy" || !health.OpenAIConfigured || health.LLMSTxtConfigured {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestContextCancellationPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Health(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
