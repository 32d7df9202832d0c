package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIEmbedder produces embeddings via an OpenAI-compatible embeddings API
// (including local servers exposing the same protocol).
type OpenAIEmbedder struct {
	embedder   embeddings.Embedder
	dimensions int
	cache      *Cache
}

// NewOpenAIEmbedder creates an embedder against the given base URL and model.
// A token of "none" is used for local services that do not require auth.
func NewOpenAIEmbedder(baseURL, model string, dimensions, cacheSize int) (*OpenAIEmbedder, error) {
	opts := []openai.Option{
		openai.WithToken("none"),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = 1
	}
	return &OpenAIEmbedder{
		embedder:   embedder,
		dimensions: dimensions,
		cache:      NewCache(cacheSize),
	}, nil
}

// Embed returns the embedding for text, using the cache when available.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vecs, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	e.cache.Set(text, vecs[0])
	return vecs[0], nil
}

// EmbedBatch embeds multiple texts in one API call.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vecs))
	}
	return vecs, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Ready reports true; transport failures surface as Embed errors.
func (e *OpenAIEmbedder) Ready() bool { return true }

// Close is a no-op for OpenAIEmbedder.
func (e *OpenAIEmbedder) Close() error { return nil }
