// Package search provides hybrid (keyword + semantic) retrieval over a
// session's document chunks.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/nutrigen/nutrigen/internal/config"
	"github.com/nutrigen/nutrigen/internal/embedding"
	"github.com/nutrigen/nutrigen/internal/keyword"
	"github.com/nutrigen/nutrigen/internal/models"
	"github.com/nutrigen/nutrigen/internal/storage"
	"github.com/nutrigen/nutrigen/internal/vector"
)

// Engine retrieves the chunks of one session most relevant to a query.
type Engine struct {
	storage      storage.Storage
	embedder     embedding.Embedder
	vectorIndex  vector.VectorIndex
	keywordIndex keyword.KeywordIndex
	config       *config.ChatConfig
}

// NewEngine creates a retrieval engine with the given dependencies.
func NewEngine(
	storage storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.VectorIndex,
	keywordIndex keyword.KeywordIndex,
	cfg *config.ChatConfig,
) *Engine {
	return &Engine{
		storage:      storage,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		config:       cfg,
	}
}

// Retrieve runs both search halves in parallel, fuses chunk scores, and returns
// the top-K chunks with their document titles. The semantic half sees every
// session's vectors, so its hits are filtered back to the query's session via
// the stored chunks.
func (e *Engine) Retrieve(ctx context.Context, query *models.SearchQuery) ([]*models.SearchResult, error) {
	// Configured defaults first; Validate only backstops what config leaves
	// unset.
	if query.TopK <= 0 {
		query.TopK = e.config.TopK
	}
	if query.KeywordWeight <= 0 && query.SemanticWeight <= 0 {
		query.KeywordWeight = e.config.KeywordWeight
		query.SemanticWeight = e.config.SemanticWeight
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []*vector.VectorResult
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	if query.KeywordWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := e.keywordIndex.Search(ctx, query.SessionID, query.Query, e.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	if query.SemanticWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queryEmbedding, err := e.embedder.Embed(ctx, query.Query)
			if err != nil {
				errChan <- fmt.Errorf("embedding failed: %w", err)
				return
			}
			results, err := e.vectorIndex.Search(ctx, queryEmbedding, e.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("vector search failed: %w", err)
				return
			}
			semanticResults = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	keywordScores := NormalizeKeywordScores(keywordResults)
	semanticScores := NormalizeSemanticScores(semanticResults)
	fused := Fuse(keywordScores, semanticScores, query.KeywordWeight, query.SemanticWeight)

	results := make([]*models.SearchResult, 0, query.TopK)
	titles := make(map[string]string)
	for _, fr := range fused {
		if len(results) == query.TopK {
			break
		}
		chunk, err := e.storage.GetChunk(ctx, fr.ChunkID)
		if err != nil {
			// Stale vector hit (chunk deleted or from another index build).
			continue
		}
		title, ok := titles[chunk.DocumentID]
		if !ok {
			doc, err := e.storage.GetDocument(ctx, chunk.DocumentID)
			if err != nil {
				continue
			}
			if doc.SessionID != query.SessionID {
				titles[chunk.DocumentID] = ""
				continue
			}
			title = doc.Title
			titles[chunk.DocumentID] = title
		}
		if title == "" {
			continue
		}
		results = append(results, &models.SearchResult{
			DocumentID:    chunk.DocumentID,
			Title:         title,
			Content:       chunk.Content,
			Score:         fr.Score,
			KeywordScore:  fr.KeywordScore,
			SemanticScore: fr.SemanticScore,
			Rank:          len(results) + 1,
		})
	}
	return results, nil
}

// VectorIndexSize reports the number of vectors currently indexed.
func (e *Engine) VectorIndexSize() int {
	return e.vectorIndex.Size()
}
