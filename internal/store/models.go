package store

import "time"

// Run represents one persisted evaluation: a batch of prediction/reference
// pairs scored together into a single aggregate rate.
type Run struct {
	ID              string    `json:"id"`
	Name            string    `json:"name,omitempty"`
	Source          string    `json:"source"` // "api", "ws", "audio"
	StartedAt       time.Time `json:"started_at"`
	DurationMs      float64   `json:"duration_ms,omitempty"`
	Pairs           int       `json:"pairs"`
	Errors          int       `json:"errors"`
	ReferenceTokens int       `json:"reference_tokens"`
	WER             *float64  `json:"wer,omitempty"` // nil when undefined (no reference tokens)
	Status          string    `json:"status"`
}

// Pair represents one scored prediction/reference pair within a run.
type Pair struct {
	RunID           string `json:"run_id"`
	Seq             int    `json:"seq"`
	Prediction      string `json:"prediction"`
	Reference       string `json:"reference"`
	Errors          int    `json:"errors"`
	ReferenceTokens int    `json:"reference_tokens"`
	Substitutions   int    `json:"substitutions"`
	Insertions      int    `json:"insertions"`
	Deletions       int    `json:"deletions"`
}
