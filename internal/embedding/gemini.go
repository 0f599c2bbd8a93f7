package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultGeminiModel is the Gemini embedding model.
	DefaultGeminiModel = "embedding-001"
	// GeminiDimensions is the output dimension of embedding-001.
	GeminiDimensions = 768
)

// GeminiEmbedder produces embeddings through the Gemini embedding API.
// Results are L2 normalized so the vector index can use inner product as
// cosine similarity, and cached by text.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	cache  *EmbeddingCache
}

// NewGeminiEmbedder creates a Gemini-backed embedder. model may be empty to
// use the default.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, cacheSize int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedder: API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: create client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiEmbedder{
		client: client,
		model:  model,
		cache:  NewEmbeddingCache(cacheSize),
	}, nil
}

// Embed returns the embedding for text, using cache when available.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embed content: empty embedding from %s", e.model)
	}
	embedding := make([]float32, len(res.Embedding.Values))
	copy(embedding, res.Embedding.Values)
	NormalizeL2Slice(embedding)
	e.cache.Set(text, embedding)
	return embedding, nil
}

// EmbedBatch embeds texts in one API round trip where possible. Cached texts
// are served locally; the rest go through the batch endpoint.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	var missing []int
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			embeddings[i] = cached
		} else {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return embeddings, nil
	}

	em := e.client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, i := range missing {
		batch.AddContent(genai.Text(texts[i]))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embed contents: %w", err)
	}
	if len(res.Embeddings) != len(missing) {
		return nil, fmt.Errorf("batch embed contents: got %d embeddings for %d texts", len(res.Embeddings), len(missing))
	}
	for j, i := range missing {
		values := res.Embeddings[j].Values
		embedding := make([]float32, len(values))
		copy(embedding, values)
		NormalizeL2Slice(embedding)
		e.cache.Set(texts[i], embedding)
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *GeminiEmbedder) Dimensions() int {
	return GeminiDimensions
}

// Close releases the underlying API connection.
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
