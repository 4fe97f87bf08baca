package history

import "time"

// Kind identifies which pipeline produced an entry.
type Kind string

const (
	KindWorkflow  Kind = "workflow"
	KindEmbedding Kind = "embedding"
)

// Status is the outcome of a generation request.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry records one generation request. The generated graph itself is not
// part of the record.
type Entry struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Kind         Kind      `json:"kind"`
	Prompt       string    `json:"prompt"`
	Status       Status    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	Error        string    `json:"error,omitempty"`
	Model        string    `json:"model,omitempty"`
	BlockCount   int       `json:"block_count"`
	EdgeCount    int       `json:"edge_count"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	DurationMS   int64     `json:"duration_ms"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind   Kind
	Status Status
	Limit  int
	Offset int
}

// Summary aggregates entries per kind.
type Summary struct {
	Kind         Kind    `json:"kind"`
	Total        int     `json:"total"`
	Failed       int     `json:"failed"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}
