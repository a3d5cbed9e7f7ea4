package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"auditflow/internal/api"
	"auditflow/internal/metrics"
)

// Snapshot is the exportable view of one session: the raw audit result, the
// derived summary, and the benchmark when one ran. Nil sections are omitted
// from the file.
type Snapshot struct {
	RootURL     string           `json:"root_url"`
	GeneratedAt time.Time        `json:"generated_at"`
	Audit       *api.AuditResult `json:"audit,omitempty"`
	Metrics     *metrics.Summary `json:"metrics,omitempty"`
	Benchmark   *api.Benchmark   `json:"benchmark,omitempty"`
}

// WriteSnapshot writes the snapshot as indented JSON under dir and returns
// the file path. The write is atomic via temp file and rename so a crash
// never leaves a truncated report behind.
func WriteSnapshot(dir, sessionID string, snap Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("audit-%s.json", sessionID))
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteLLMSText dumps the service-generated llms.txt content for the session
// and returns the file path. The content is written verbatim.
func WriteLLMSText(dir, sessionID, content string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("no llms.txt content for session %s", sessionID)
	}
	path := filepath.Join(dir, fmt.Sprintf("llms-%s.txt", sessionID))
	if err := writeAtomic(path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes data to path via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
