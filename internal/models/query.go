package models

import "fmt"

// SearchQuery is a retrieval request scoped to one session's documents.
type SearchQuery struct {
	SessionID      string  `json:"session_id"`
	Query          string  `json:"query"`
	TopK           int     `json:"top_k,omitempty"`
	KeywordWeight  float64 `json:"keyword_weight,omitempty"`
	SemanticWeight float64 `json:"semantic_weight,omitempty"`
}

// Validate checks required fields and sets defaults. Both search halves are enabled
// with equal weight when neither is set.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}
	if q.TopK <= 0 {
		q.TopK = 4
	}
	if q.TopK > 50 {
		q.TopK = 50
	}
	if q.KeywordWeight <= 0 && q.SemanticWeight <= 0 {
		q.KeywordWeight = 0.5
		q.SemanticWeight = 0.5
	}
	return nil
}
