package models

import (
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *SearchQuery
		wantErr bool
	}{
		{"empty query", &SearchQuery{SessionID: "s1", Query: ""}, true},
		{"missing session", &SearchQuery{Query: "hello"}, true},
		{"valid query", &SearchQuery{SessionID: "s1", Query: "hello"}, false},
		{"sets default top_k", &SearchQuery{SessionID: "s1", Query: "x", TopK: 0}, false},
		{"caps top_k at 50", &SearchQuery{SessionID: "s1", Query: "x", TopK: 200}, false},
		{"sets default weights", &SearchQuery{SessionID: "s1", Query: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.query.TopK <= 0 {
				t.Error("expected default top_k to be set")
			}
			if tt.query.TopK > 50 {
				t.Errorf("expected top_k capped at 50, got %d", tt.query.TopK)
			}
			if tt.query.KeywordWeight <= 0 && tt.query.SemanticWeight <= 0 {
				t.Error("expected default weights when both unset")
			}
		})
	}
}
