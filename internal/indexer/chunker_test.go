package indexer

import (
	"strings"
	"testing"
)

func TestChunker_Chunk(t *testing.T) {
	c := NewChunker(3, 1)
	chunks := c.Chunk("doc1", "Peso 80.5 kg Massa Muscular 35.0 kg")
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for 7 words at size 3 step 2, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.DocumentID != "doc1" {
			t.Errorf("chunk %d DocumentID = %s", i, ch.DocumentID)
		}
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d ChunkIndex = %d", i, ch.ChunkIndex)
		}
		if !strings.HasPrefix(ch.ID, "doc1_") {
			t.Errorf("chunk %d ID = %q", i, ch.ID)
		}
	}
	// Consecutive chunks share the overlap word.
	first := strings.Fields(chunks[0].Content)
	second := strings.Fields(chunks[1].Content)
	if first[len(first)-1] != second[0] {
		t.Errorf("no overlap between %q and %q", chunks[0].Content, chunks[1].Content)
	}
}

func TestChunker_ChunkEmpty(t *testing.T) {
	c := NewChunker(5, 1)
	if chunks := c.Chunk("d", "   \n\t  "); chunks != nil {
		t.Errorf("empty text should return nil, got %v", chunks)
	}
}

func TestChunker_OverlapAtLeastSize(t *testing.T) {
	// Degenerate config must still terminate and cover every word.
	c := NewChunker(2, 5)
	chunks := c.Chunk("d", "a b c d")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last.Content, "d") {
		t.Errorf("last chunk = %q, should reach the final word", last.Content)
	}
}

func TestPreprocess(t *testing.T) {
	if got := Preprocess("  Peso \n\t 80.5  "); got != "Peso 80.5" {
		t.Errorf("Preprocess = %q", got)
	}
	if Preprocess("") != "" {
		t.Error("empty input should stay empty")
	}
}
