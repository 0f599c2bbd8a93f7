package indexer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nutrigen/nutrigen/internal/models"
)

// Chunker splits document text into overlapping word windows. Overlap keeps a
// measurement line and its header in at least one common chunk.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap, both in
// words.
func NewChunker(size, overlap int) *Chunker {
	return &Chunker{size: size, overlap: overlap}
}

// Chunk cuts text into DocumentChunks for docID, in order.
func (c *Chunker) Chunk(docID, text string) []*models.DocumentChunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.size - c.overlap
	if step <= 0 {
		step = 1
	}

	var chunks []*models.DocumentChunk
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, &models.DocumentChunk{
			ID:         fmt.Sprintf("%s_%s", docID, uuid.New().String()[:8]),
			DocumentID: docID,
			Content:    strings.Join(words[start:end], " "),
			ChunkIndex: len(chunks),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}
