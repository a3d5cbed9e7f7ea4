package api

import (
	"encoding/json"
	"fmt"
	"sort"
)

// AuditState tracks the lifecycle of an audit session on the service.
type AuditState string

const (
	AuditPending   AuditState = "pending"
	AuditRunning   AuditState = "running"
	AuditCompleted AuditState = "completed"
	AuditFailed    AuditState = "failed"
)

// Terminal reports whether no further audit status changes will occur.
func (s AuditState) Terminal() bool {
	return s == AuditCompleted || s == AuditFailed
}

// BenchmarkState tracks the lifecycle of a benchmark run on the service.
type BenchmarkState string

const (
	BenchmarkNotStarted BenchmarkState = "not_started"
	BenchmarkRunning    BenchmarkState = "running"
	BenchmarkCompleted  BenchmarkState = "completed"
	BenchmarkFailed     BenchmarkState = "failed"
)

// Terminal reports whether no further benchmark status changes will occur.
func (s BenchmarkState) Terminal() bool {
	return s == BenchmarkCompleted || s == BenchmarkFailed
}

// AuditRequest is the body of POST /api/audit.
type AuditRequest struct {
	URL               string `json:"url"`
	MaxDepth          int    `json:"max_depth,omitempty"`
	MaxURLs           int    `json:"max_urls,omitempty"`
	IncludeLighthouse bool   `json:"include_lighthouse,omitempty"`
}

// AuditStatus is the response shape shared by audit submission and status polls.
// AuditData is present exactly when State is completed.
type AuditStatus struct {
	SessionID string       `json:"session_id"`
	State     AuditState   `json:"status"`
	Progress  int          `json:"progress"`
	Message   string       `json:"message"`
	AuditData *AuditResult `json:"audit_data,omitempty"`
	LLMSText  string       `json:"llmstxt_content,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// AuditResult is the raw crawl payload attached to a completed audit.
type AuditResult struct {
	Items  []PageRecord `json:"items"`
	Fields FieldList    `json:"fields"`
	Scan   ScanInfo     `json:"scan"`
}

// ScanInfo describes the crawl that produced an AuditResult.
type ScanInfo struct {
	URL       string  `json:"url"`
	Time      float64 `json:"time"`
	StartTime int64   `json:"startTime"`
}

// Field names one column of the audit data with a human-readable description.
type Field struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// FieldList tolerates both wire encodings the service has used for field
// descriptions: an array of {name, comment} objects and a plain
// {name: comment} object. It always marshals as the array form.
type FieldList []Field

func (f *FieldList) UnmarshalJSON(data []byte) error {
	var asArray []Field
	if err := json.Unmarshal(data, &asArray); err == nil {
		*f = asArray
		return nil
	}
	var asMap map[string]string
	if err := json.Unmarshal(data, &asMap); err != nil {
		return fmt.Errorf("fields: unsupported encoding: %w", err)
	}
	names := make([]string, 0, len(asMap))
	for name := range asMap {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make(FieldList, 0, len(names))
	for _, name := range names {
		list = append(list, Field{Name: name, Comment: asMap[name]})
	}
	*f = list
	return nil
}

// PageRecord holds one crawled URL's observations. Known fields are typed;
// anything else the crawler emitted is preserved opaquely in Extra.
type PageRecord struct {
	URL           string  `json:"url"`
	Status        int     `json:"status"`
	Title         string  `json:"title"`
	H1            string  `json:"h1"`
	Description   string  `json:"description"`
	Canonical     string  `json:"canonical"`
	H1Count       int     `json:"h1_count"`
	H2Count       int     `json:"h2_count"`
	Images        int     `json:"images"`
	ImagesNoAlt   int     `json:"images_without_alt"`
	Links         int     `json:"links"`
	LinksInternal int     `json:"links_internal"`
	LinksExternal int     `json:"links_external"`
	DOMSize       int64   `json:"dom_size"`
	HTMLSize      int64   `json:"html_size"`
	RequestTime   float64 `json:"request_time"`

	PerformanceScore   *float64 `json:"performance_score,omitempty"`
	AccessibilityScore *float64 `json:"accessibility_score,omitempty"`
	SEOScore           *float64 `json:"seo_score,omitempty"`

	// Extra carries fields the client does not recognize. They survive
	// marshaling so export paths never drop crawler data.
	Extra map[string]any `json:"-"`
}

// pageRecordAlias avoids recursing into the custom JSON methods.
type pageRecordAlias PageRecord

var knownPageKeys = map[string]struct{}{
	"url":                 {},
	"status":              {},
	"title":               {},
	"h1":                  {},
	"description":         {},
	"canonical":           {},
	"h1_count":            {},
	"h2_count":            {},
	"images":              {},
	"images_without_alt":  {},
	"links":               {},
	"links_internal":      {},
	"links_external":      {},
	"dom_size":            {},
	"html_size":           {},
	"request_time":        {},
	"performance_score":   {},
	"accessibility_score": {},
	"seo_score":           {},
}

func (p *PageRecord) UnmarshalJSON(data []byte) error {
	var alias pageRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if _, known := knownPageKeys[key]; known {
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		alias.Extra = make(map[string]any, len(raw))
		for key, value := range raw {
			var decoded any
			if err := json.Unmarshal(value, &decoded); err != nil {
				return fmt.Errorf("page record field %q: %w", key, err)
			}
			alias.Extra[key] = decoded
		}
	}
	*p = PageRecord(alias)
	return nil
}

func (p PageRecord) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(pageRecordAlias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return encoded, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, err
	}
	for key, value := range p.Extra {
		if _, known := knownPageKeys[key]; known {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("page record extra field %q: %w", key, err)
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatReply is the assistant's answer to one chat message.
type ChatReply struct {
	Response string     `json:"response"`
	Sources  []Citation `json:"sources,omitempty"`
}

// HealthStatus is the response of GET /api/health.
type HealthStatus struct {
	Status            string `json:"status"`
	OpenAIConfigured  bool   `json:"openai_configured"`
	LLMSTxtConfigured bool   `json:"llmstxt_configured"`
}

// QuestionList is the response of GET /api/benchmark/questions.
type QuestionList struct {
	Questions []string `json:"questions"`
}

// BenchmarkRequest is the body of POST /api/benchmark. A nil Queries slice
// marshals as JSON null, which tells the service to use its default question
// set.
type BenchmarkRequest struct {
	SessionID string   `json:"session_id"`
	Queries   []string `json:"queries"`
}

// Benchmark is the benchmark status/result shape shared by the start call and
// status polls. Result fields are populated only when State is completed.
type Benchmark struct {
	SessionID     string         `json:"session_id"`
	State         BenchmarkState `json:"status"`
	SiteURL       string         `json:"site_url,omitempty"`
	CrawledPages  int            `json:"crawled_pages,omitempty"`
	IndexedChunks int            `json:"indexed_chunks,omitempty"`
	QueriesRun    int            `json:"queries_run,omitempty"`
	OverallScores *OverallScores `json:"overall_scores,omitempty"`
	QueryResults  []QueryResult  `json:"query_results,omitempty"`
	MissingTopics []string       `json:"missing_topics,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// OverallScores aggregates per-query benchmark metrics; each rate is in [0,1].
type OverallScores struct {
	AnswerabilityRate float64 `json:"answerability_rate"`
	CitationCoverage  float64 `json:"citation_coverage"`
	HallucinationRate float64 `json:"hallucination_rate"`
	Completeness      float64 `json:"completeness"`
}

// QueryResult is one benchmark question's outcome.
type QueryResult struct {
	Query     string       `json:"query"`
	Answer    string       `json:"answer"`
	Status    string       `json:"status"`
	Citations []Citation   `json:"citations"`
	Metrics   QueryMetrics `json:"metrics"`
}

// Query result statuses.
const (
	QueryAnswered = "answered"
	QueryNotFound = "not_found"
)

// Citation points at the crawled content backing an answer.
type Citation struct {
	URL     string `json:"url"`
	Section string `json:"section"`
}

// QueryMetrics scores one answer; Completeness is in [0,1].
type QueryMetrics struct {
	Answerable    bool    `json:"answerable"`
	CitationOK    bool    `json:"citation_ok"`
	Hallucination bool    `json:"hallucination"`
	Completeness  float64 `json:"completeness"`
}
