package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"auditflow/internal/watch"
)

type cliTestEnv struct {
	server     *httptest.Server
	mux        *http.ServeMux
	configPath string
	baseDir    string
	reportDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	stateDir := filepath.Join(base, "state")
	reportDir := filepath.Join(base, "reports")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[service]
base_url = %q

[benchmark]
poll_interval_seconds = 1

[paths]
state_dir = %q
report_dir = %q
`, server.URL, stateDir, reportDir)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		server:     server,
		mux:        mux,
		configPath: configPath,
		baseDir:    base,
		reportDir:  reportDir,
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func serveJSON(t *testing.T, env *cliTestEnv, pattern, body string) {
	t.Helper()
	env.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
}

const completedAuditBody = `{
  "session_id": "sess-1",
  "status": "completed",
  "progress": 100,
  "message": "Audit complete",
  "audit_data": {
    "items": [
      {"url": "https://example.com/", "status": 200, "title": "Home", "h1": "Welcome",
       "description": "d", "images": 2, "images_without_alt": 1, "links": 5,
       "reading_level": "easy"},
      {"url": "https://example.com/missing", "status": 404}
    ],
    "fields": [{"name": "url", "comment": "Page URL"}],
    "scan": {"url": "https://example.com", "time": 3.2, "startTime": 1756600000}
  },
  "llmstxt_content": "# Example\n"
}`

func TestCLIAuditWatchesToCompletion(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mux.HandleFunc("/api/audit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"session_id": "sess-1", "status": "pending", "progress": 0, "message": "Queued"}`)
	})
	serveJSON(t, env, "/api/audit/sess-1", completedAuditBody)

	out, _, err := runCLI(t, env, "audit", "https://example.com")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !strings.Contains(out, "Started audit session sess-1") {
		t.Fatalf("missing start line: %q", out)
	}
	if !strings.Contains(out, "completed") || !strings.Contains(out, "SEO") {
		t.Fatalf("missing completion summary: %q", out)
	}
	if !strings.Contains(out, "llms.txt content available") {
		t.Fatalf("missing llms.txt hint: %q", out)
	}

	// The session lands in local history.
	out, _, err = runCLI(t, env, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, "sess-1") || !strings.Contains(out, "https://example.com") {
		t.Fatalf("sessions output missing entry: %q", out)
	}
}

func TestCLIAuditReportsServiceFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mux.HandleFunc("/api/audit", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"session_id": "sess-3", "status": "pending", "progress": 0, "message": "Queued"}`)
	})
	serveJSON(t, env, "/api/audit/sess-3", `{"session_id": "sess-3", "status": "failed", "progress": 10, "error": "robots.txt forbids crawling"}`)

	_, _, err := runCLI(t, env, "audit", "https://example.com")
	if err == nil {
		t.Fatal("expected error for failed audit")
	}
	// The typed failure must survive to the caller so exit codes can
	// distinguish a failed audit from a broken invocation.
	var failed *watch.AuditFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected *watch.AuditFailedError, got %T: %v", err, err)
	}
	if !strings.Contains(failed.Message, "robots.txt") {
		t.Fatalf("failure message = %q", failed.Message)
	}
}

func TestCLIStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/audit/sess-1", completedAuditBody)

	out, _, err := runCLI(t, env, "status", "sess-1", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}

	var status map[string]any
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if status["status"] != "completed" {
		t.Fatalf("status = %v", status["status"])
	}
}

func TestCLIStatusResolvesMostRecentSession(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/audit/", completedAuditBody)

	if _, _, err := runCLI(t, env, "status"); err == nil {
		t.Fatal("expected error with empty history")
	}
}

func TestCLIExportWritesSnapshot(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/audit/sess-1", completedAuditBody)
	serveJSON(t, env, "/api/benchmark/sess-1", `{"session_id": "sess-1", "status": "not_started"}`)

	out, _, err := runCLI(t, env, "export", "--session", "sess-1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := filepath.Join(env.reportDir, "audit-sess-1.json")
	if !strings.Contains(out, path) {
		t.Fatalf("output missing path: %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap map[string]any
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot is not JSON: %v", err)
	}
	if snap["root_url"] != "https://example.com" {
		t.Fatalf("root_url = %v", snap["root_url"])
	}
	if snap["benchmark"] != nil {
		t.Fatalf("not_started benchmark should be omitted: %v", snap["benchmark"])
	}
	// Open-schema page fields survive the export.
	if !strings.Contains(string(data), "reading_level") {
		t.Fatal("snapshot lost unknown page fields")
	}
}

func TestCLILLMSTxt(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/audit/sess-1", completedAuditBody)

	out, _, err := runCLI(t, env, "llmstxt", "sess-1", "--stdout")
	if err != nil {
		t.Fatalf("llmstxt --stdout: %v", err)
	}
	if out != "# Example\n" {
		t.Fatalf("llmstxt output = %q", out)
	}

	out, _, err = runCLI(t, env, "llmstxt", "sess-1")
	if err != nil {
		t.Fatalf("llmstxt: %v", err)
	}
	path := filepath.Join(env.reportDir, "llms-sess-1.txt")
	if !strings.Contains(out, path) {
		t.Fatalf("output missing path: %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("llms.txt missing: %v", err)
	}
}

func TestCLIChatOneShot(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/audit/sess-1", completedAuditBody)
	serveJSON(t, env, "/api/chat", `{"response": "Fix the 404 page.", "sources": [{"url": "https://example.com/missing", "section": "status"}]}`)

	out, _, err := runCLI(t, env, "chat", "--session", "sess-1", "what should I fix?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(out, "Fix the 404 page.") {
		t.Fatalf("missing answer: %q", out)
	}
	if !strings.Contains(out, "source: https://example.com/missing (status)") {
		t.Fatalf("missing source line: %q", out)
	}
}

func TestCLIChatRefusedBeforeCompletion(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/audit/sess-2", `{"session_id": "sess-2", "status": "running", "progress": 40, "message": "Crawling"}`)

	_, _, err := runCLI(t, env, "chat", "--session", "sess-2", "hello")
	if err == nil || !strings.Contains(err.Error(), "chat opens once the audit completes") {
		t.Fatalf("expected gating error, got %v", err)
	}
}

func TestCLIBenchmarkRun(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/audit/sess-1", completedAuditBody)
	env.mux.HandleFunc("/api/benchmark", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode benchmark request: %v", err)
		}
		if req["queries"] != nil {
			t.Errorf("expected null queries, got %v", req["queries"])
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"session_id": "sess-1", "status": "running"}`)
	})
	serveJSON(t, env, "/api/benchmark/sess-1", `{
  "session_id": "sess-1",
  "status": "completed",
  "site_url": "https://example.com",
  "crawled_pages": 2,
  "indexed_chunks": 9,
  "queries_run": 2,
  "overall_scores": {"answerability_rate": 0.5, "citation_coverage": 1.0, "hallucination_rate": 0.0, "completeness": 0.75},
  "query_results": [
    {"query": "What does the site sell?", "answer": "Widgets", "status": "answered",
     "citations": [{"url": "https://example.com/", "section": "main"}],
     "metrics": {"answerable": true, "citation_ok": true, "hallucination": false, "completeness": 1.0}}
  ],
  "missing_topics": ["pricing"]
}`)

	out, _, err := runCLI(t, env, "benchmark", "run", "--session", "sess-1")
	if err != nil {
		t.Fatalf("benchmark run: %v", err)
	}
	if !strings.Contains(out, "Started benchmark for session sess-1") {
		t.Fatalf("missing start line: %q", out)
	}
	if !strings.Contains(out, "Answerability") || !strings.Contains(out, "50%") {
		t.Fatalf("missing overall scores: %q", out)
	}
	if !strings.Contains(out, "What does the site sell?") {
		t.Fatalf("missing query row: %q", out)
	}
	if !strings.Contains(out, "pricing") {
		t.Fatalf("missing missing-topics section: %q", out)
	}
}

func TestCLIBenchmarkQuestions(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/benchmark/questions", `{"questions": ["What does the site sell?", "How do I contact support?"]}`)

	out, _, err := runCLI(t, env, "benchmark", "questions")
	if err != nil {
		t.Fatalf("benchmark questions: %v", err)
	}
	if !strings.Contains(out, "1. What does the site sell?") {
		t.Fatalf("missing question: %q", out)
	}
}

func TestCLIHealth(t *testing.T) {
	env := setupCLITestEnv(t)
	serveJSON(t, env, "/api/health", `{"status": "healthy", "openai_configured": true, "llmstxt_configured": false}`)

	out, _, err := runCLI(t, env, "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "healthy") {
		t.Fatalf("missing health status: %q", out)
	}
	if !strings.Contains(out, "yes") || !strings.Contains(out, "no") {
		t.Fatalf("missing feature flags: %q", out)
	}
}

func TestCLIConfigShowHonorsConfigFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, env.configPath) {
		t.Fatalf("expected resolved path %q in output: %q", env.configPath, out)
	}
	if !strings.Contains(out, env.server.URL) {
		t.Fatalf("expected base URL %q from the flagged config: %q", env.server.URL, out)
	}
	if strings.Contains(out, "defaults were used") {
		t.Fatalf("flagged config should have been read: %q", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "generated.toml")

	out, _, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output missing path: %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read generated config: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatalf("generated config missing base_url: %q", data)
	}

	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
