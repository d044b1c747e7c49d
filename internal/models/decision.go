package models

import "time"

// Route is the pipeline's final disposition for a document within a trade.
type Route string

const (
	// RouteFastPath means deterministic extraction succeeded well enough
	// to use its items without an AI extraction call.
	RouteFastPath Route = "fast-path"
	// RouteAIExtraction means the document is relevant but needs the
	// expensive AI extraction call.
	RouteAIExtraction Route = "ai-extraction"
	// RouteSkip means the document is irrelevant or excluded for the trade.
	RouteSkip Route = "skip"
)

// Decision is the orchestrator's routable output for one document and trade.
type Decision struct {
	DocumentID string          `json:"document_id"`
	Trade      string          `json:"trade"`
	Score      DocumentScore   `json:"score"`
	FastPath   *FastPathResult `json:"fast_path,omitempty"`
	Route      Route           `json:"route"`
	// Boosted is true when an AI classification adjusted the score.
	Boosted bool `json:"boosted"`
}

// RunSummary aggregates one pipeline run for status reporting.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Documents  int       `json:"documents"`
	FastPath   int       `json:"fast_path"`
	AIRouted   int       `json:"ai_routed"`
	Skipped    int       `json:"skipped"`
}
