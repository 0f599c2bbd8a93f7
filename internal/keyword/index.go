// Package keyword provides BM25 keyword indexing and search over document
// chunks, scoped by session.
package keyword

import (
	"context"

	"github.com/nutrigen/nutrigen/internal/models"
)

// KeywordIndex defines keyword search operations. IDs are chunk IDs so keyword
// and semantic hits fuse at the same granularity.
type KeywordIndex interface {
	Index(ctx context.Context, chunk *models.DocumentChunk, title, sessionID string) error
	Search(ctx context.Context, sessionID, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DeleteBySession(ctx context.Context, sessionID string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
