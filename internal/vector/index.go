// Package vector provides the semantic half of hybrid retrieval: vector
// storage and similarity search over chunk embeddings.
package vector

import "context"

// VectorIndex stores chunk embeddings and answers nearest-neighbor queries.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Remove(ctx context.Context, ids []string) error
	Clear()
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// VectorResult is one similarity hit. ID is a chunk ID; Score is cosine
// similarity for normalized vectors.
type VectorResult struct {
	ID    string
	Score float64
}
