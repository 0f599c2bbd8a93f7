package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/nutrigen/nutrigen/internal/models"
)

// chunkDoc is the indexable shape of a document chunk.
type chunkDoc struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// reused so sessions survive restarts. If the mapping in code changes, remove
// the index directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming): English stemming
	// mangles Portuguese terms like "refeições" and "medições".
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	sessionFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("session_id", sessionFieldMapping)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a chunk under its session.
func (b *BleveIndex) Index(ctx context.Context, chunk *models.DocumentChunk, title, sessionID string) error {
	return b.index.Index(chunk.ID, &chunkDoc{
		SessionID: sessionID,
		Title:     title,
		Content:   chunk.Content,
	})
}

// Search runs a match query over title and content, restricted to sessionID.
func (b *BleveIndex) Search(ctx context.Context, sessionID, query string, limit int) ([]*KeywordResult, error) {
	mq := bleve.NewMatchQuery(query)
	sq := bleve.NewTermQuery(sessionID)
	sq.SetField("session_id")
	q := bleve.NewConjunctionQuery(sq, mq)

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes a chunk from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DeleteBySession removes every chunk indexed under sessionID.
func (b *BleveIndex) DeleteBySession(ctx context.Context, sessionID string) error {
	sq := bleve.NewTermQuery(sessionID)
	sq.SetField("session_id")
	req := bleve.NewSearchRequest(sq)
	req.Size = 10000
	for {
		results, err := b.index.Search(req)
		if err != nil {
			return fmt.Errorf("Bleve session scan failed: %w", err)
		}
		if len(results.Hits) == 0 {
			return nil
		}
		for _, hit := range results.Hits {
			if err := b.index.Delete(hit.ID); err != nil {
				return fmt.Errorf("delete chunk %s: %w", hit.ID, err)
			}
		}
		if uint64(len(results.Hits)) >= results.Total {
			return nil
		}
	}
}

// DocCount returns the total number of chunks in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
