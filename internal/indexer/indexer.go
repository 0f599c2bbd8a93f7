// Package indexer provides document chunking and indexing into storage,
// keyword, and vector indices.
package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutrigen/nutrigen/internal/config"
	"github.com/nutrigen/nutrigen/internal/embedding"
	"github.com/nutrigen/nutrigen/internal/keyword"
	"github.com/nutrigen/nutrigen/internal/models"
	"github.com/nutrigen/nutrigen/internal/storage"
	"github.com/nutrigen/nutrigen/internal/vector"
)

// Indexer indexes documents into storage, keyword index, and vector index.
type Indexer struct {
	storage      storage.Storage
	embedder     embedding.Embedder
	vectorIndex  vector.VectorIndex
	keywordIndex keyword.KeywordIndex
	chunker      *Chunker
	logger       *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(
	storage storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.VectorIndex,
	keywordIndex keyword.KeywordIndex,
	cfg *config.ChatConfig,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		storage:      storage,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		chunker:      NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexDocument indexes a document into its session: store, chunk, embed,
// index in vector and keyword. input.SessionID is required.
func (idx *Indexer) IndexDocument(ctx context.Context, input *models.DocumentInput) error {
	if input.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	doc := &models.Document{
		ID:        input.ID,
		SessionID: input.SessionID,
		Title:     input.Title,
		Content:   Preprocess(input.Content),
		Metadata:  input.Metadata,
	}
	if err := idx.storage.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	chunks := idx.chunker.Chunk(doc.ID, doc.Content)
	if len(chunks) == 0 {
		chunks = []*models.DocumentChunk{{
			ID:         doc.ID + "_0",
			DocumentID: doc.ID,
			Content:    doc.Content,
			ChunkIndex: 0,
		}}
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	if err := idx.storage.BatchCreateChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	if err := idx.vectorIndex.Add(ctx, chunkIDs, embeddings); err != nil {
		return fmt.Errorf("failed to index vectors: %w", err)
	}
	// Underscores in filenames become spaces so "avaliacao_marco_2024.pdf" is
	// searchable as "avaliacao marco 2024" (the standard analyzer does not
	// split on underscore).
	title := normalizeTitleForKeywordSearch(doc.Title)
	for _, ch := range chunks {
		if err := idx.keywordIndex.Index(ctx, ch, title, doc.SessionID); err != nil {
			return fmt.Errorf("failed to index keywords: %w", err)
		}
	}
	idx.logger.Debug("document indexed",
		zap.String("doc_id", doc.ID),
		zap.String("session_id", doc.SessionID),
		zap.Int("chunks", len(chunks)))
	return nil
}

func normalizeTitleForKeywordSearch(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}

// DeleteDocument removes a document from all indices and storage.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	chunks, err := idx.storage.GetChunksByDocumentID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
		if err := idx.keywordIndex.Delete(ctx, ch.ID); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	if err := idx.vectorIndex.Remove(ctx, chunkIDs); err != nil {
		return fmt.Errorf("failed to delete from vector index: %w", err)
	}
	if err := idx.storage.DeleteChunksByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	idx.logger.Debug("document deleted", zap.String("id", id))
	return nil
}

// DeleteSession removes every document of a session from all indices. The
// session row itself is left to the storage layer.
func (idx *Indexer) DeleteSession(ctx context.Context, sessionID string) error {
	docs, err := idx.storage.ListDocumentsBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to list session documents: %w", err)
	}
	for _, doc := range docs {
		if err := idx.DeleteDocument(ctx, doc.ID); err != nil {
			return err
		}
	}
	if err := idx.keywordIndex.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear keyword index: %w", err)
	}
	return nil
}

// ReindexSession rebuilds a session's documents in the keyword and vector
// indices from storage. Used when the in-memory vector index starts empty or
// was cleared because its snapshot went stale.
func (idx *Indexer) ReindexSession(ctx context.Context, sessionID string) error {
	docs, err := idx.storage.ListDocumentsBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to list session documents: %w", err)
	}
	for _, doc := range docs {
		chunks, err := idx.storage.GetChunksByDocumentID(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to get chunks: %w", err)
		}
		if len(chunks) == 0 {
			continue
		}
		texts := make([]string, len(chunks))
		chunkIDs := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Content
			chunkIDs[i] = ch.ID
		}
		embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if err := idx.vectorIndex.Add(ctx, chunkIDs, embeddings); err != nil {
			return fmt.Errorf("failed to index vectors: %w", err)
		}
		title := normalizeTitleForKeywordSearch(doc.Title)
		for _, ch := range chunks {
			if err := idx.keywordIndex.Index(ctx, ch, title, sessionID); err != nil {
				return fmt.Errorf("failed to index keywords: %w", err)
			}
		}
	}
	return nil
}
