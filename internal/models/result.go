package models

// SearchResult is a single retrieval hit: a chunk of a session document with its
// fused relevance scores. Content is the snippet handed to the answering prompt.
type SearchResult struct {
	DocumentID    string  `json:"document_id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	KeywordScore  float64 `json:"keyword_score"`
	SemanticScore float64 `json:"semantic_score"`
	Rank          int     `json:"rank"`
}
