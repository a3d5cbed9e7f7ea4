package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultUserAgent   = "auditflow/0.1.0"
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps the Audit Flow REST API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(agent) != "" {
			c.userAgent = agent
		}
	}
}

// NewClient constructs a service client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("audit service: http %d: %s", e.Code, e.Body)
}

// StartAudit submits a new audit and returns the initial session status.
func (c *Client) StartAudit(ctx context.Context, req AuditRequest) (*AuditStatus, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("start audit: url required")
	}
	var status AuditStatus
	if err := c.call(ctx, http.MethodPost, "/api/audit", req, &status); err != nil {
		return nil, fmt.Errorf("start audit: %w", err)
	}
	return &status, nil
}

// AuditStatus fetches the current status of an audit session.
func (c *Client) AuditStatus(ctx context.Context, sessionID string) (*AuditStatus, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("audit status: session id required")
	}
	var status AuditStatus
	if err := c.call(ctx, http.MethodGet, "/api/audit/"+sessionID, nil, &status); err != nil {
		return nil, fmt.Errorf("audit status: %w", err)
	}
	return &status, nil
}

// Chat sends one question about a completed audit and returns the answer.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("chat: session id required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("chat: message required")
	}
	var reply ChatReply
	req := ChatRequest{SessionID: sessionID, Message: message}
	if err := c.call(ctx, http.MethodPost, "/api/chat", req, &reply); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return &reply, nil
}

// Health probes service liveness and feature configuration.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	if err := c.call(ctx, http.MethodGet, "/api/health", nil, &health); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &health, nil
}

// BenchmarkQuestions fetches the service's default benchmark question set.
func (c *Client) BenchmarkQuestions(ctx context.Context) (*QuestionList, error) {
	var list QuestionList
	if err := c.call(ctx, http.MethodGet, "/api/benchmark/questions", nil, &list); err != nil {
		return nil, fmt.Errorf("benchmark questions: %w", err)
	}
	return &list, nil
}

// StartBenchmark launches a benchmark run for a completed audit session.
// A nil queries slice is sent as JSON null so the service falls back to its
// default question set.
func (c *Client) StartBenchmark(ctx context.Context, sessionID string, queries []string) (*Benchmark, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("start benchmark: session id required")
	}
	var bench Benchmark
	req := BenchmarkRequest{SessionID: sessionID, Queries: queries}
	if err := c.call(ctx, http.MethodPost, "/api/benchmark", req, &bench); err != nil {
		return nil, fmt.Errorf("start benchmark: %w", err)
	}
	return &bench, nil
}

// BenchmarkStatus fetches the current status of a benchmark run.
func (c *Client) BenchmarkStatus(ctx context.Context, sessionID string) (*Benchmark, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("benchmark status: session id required")
	}
	var bench Benchmark
	if err := c.call(ctx, http.MethodGet, "/api/benchmark/"+sessionID, nil, &bench); err != nil {
		return nil, fmt.Errorf("benchmark status: %w", err)
	}
	return &bench, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Code: resp.StatusCode, Body: snippet(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func snippet(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	const limit = 200
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return text
}
