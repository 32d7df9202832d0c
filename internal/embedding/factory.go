package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/config"
)

// New creates the embedder selected by cfg.Provider. When provider
// initialization fails, a Disabled embedder is returned instead of an error so
// the service starts in degraded mode (lexical search only).
func New(cfg *config.EmbeddingConfig, logger *zap.Logger) Embedder {
	emb, err := newProvider(cfg)
	if err != nil {
		logger.Warn("embedding provider unavailable, semantic search disabled",
			zap.String("provider", cfg.Provider),
			zap.Error(err),
		)
		return NewDisabled(cfg.Dimensions)
	}
	return emb
}

func newProvider(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimensions, cfg.CacheSize)
	case "onnx":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	case "disabled":
		return nil, fmt.Errorf("provider disabled by configuration")
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, onnx, mock, disabled)", cfg.Provider)
	}
}
