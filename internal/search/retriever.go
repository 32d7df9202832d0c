// Package search provides the query planner: retrieval strategies and result fusion.
package search

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/embedding"
	"github.com/docuvault/docsearch/internal/lexical"
	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/vector"
	"github.com/docuvault/docsearch/pkg/utils"
)

// Retriever is a single retrieval strategy. The engine composes retrievers
// uniformly instead of branching on mode tags throughout.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int, threshold float64) ([]models.ScoredResult, error)
}

// SemanticRetriever embeds the query and searches the vector index.
type SemanticRetriever struct {
	embedder embedding.Embedder
	index    *vector.Index
	logger   *zap.Logger
}

// NewSemanticRetriever creates a semantic retriever.
func NewSemanticRetriever(embedder embedding.Embedder, index *vector.Index, logger *zap.Logger) *SemanticRetriever {
	return &SemanticRetriever{embedder: embedder, index: index, logger: logger}
}

// Retrieve embeds the query and returns vector index hits. An unavailable or
// failing embedding provider degrades to an empty result set, never an error,
// so lexical retrieval can still serve the request.
func (r *SemanticRetriever) Retrieve(ctx context.Context, query string, limit int, threshold float64) ([]models.ScoredResult, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, embedding.ErrUnavailable) {
			r.logger.Debug("embedding provider unavailable, skipping semantic retrieval")
		} else {
			r.logger.Warn("query embedding failed, skipping semantic retrieval", zap.Error(err))
		}
		return nil, nil
	}
	utils.NormalizeL2(vec)
	hits, err := r.index.Search(ctx, vec, limit, threshold)
	if err != nil {
		return nil, err
	}
	results := make([]models.ScoredResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, models.ScoredResult{
			DocumentID: h.DocumentID,
			Score:      h.Score,
			Provenance: models.ProvenanceSemantic,
		})
	}
	return results, nil
}

// LexicalRetriever scores documents by term occurrence, independent of the
// vector index and the embedding provider.
type LexicalRetriever struct {
	matcher *lexical.Matcher
}

// NewLexicalRetriever creates a lexical retriever around matcher.
func NewLexicalRetriever(matcher *lexical.Matcher) *LexicalRetriever {
	return &LexicalRetriever{matcher: matcher}
}

// Retrieve runs the lexical matcher. The threshold is applied by the engine
// after fusion; raw lexical scores pass through here.
func (r *LexicalRetriever) Retrieve(ctx context.Context, query string, limit int, threshold float64) ([]models.ScoredResult, error) {
	return r.matcher.Search(ctx, query, limit)
}
