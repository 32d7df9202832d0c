package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/config"
	"github.com/docuvault/docsearch/internal/embedding"
	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
	"github.com/docuvault/docsearch/internal/vector"
)

// stubEmbedder maps known texts to fixed unit vectors so tests control
// similarity exactly. Unknown texts get a vector orthogonal to all fixtures.
type stubEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		out := make([]float32, s.dim)
		copy(out, v)
		return out, nil
	}
	out := make([]float32, s.dim)
	out[s.dim-1] = 1
	return out, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dim }
func (s *stubEmbedder) Ready() bool     { return true }
func (s *stubEmbedder) Close() error    { return nil }

func testSearchConfig() *config.SearchConfig {
	return &config.SearchConfig{
		DefaultLimit:        10,
		MaxLimit:            100,
		HybridBonus:         0.2,
		LexicalDiscount:     0.8,
		LexicalSaturation:   3.0,
		ScanPageSize:        100,
		QueryTimeoutSeconds: 5,
		PreviewLength:       160,
	}
}

func newTestEngine(t *testing.T, emb embedding.Embedder, dim int) (*Engine, storage.DocumentStore, *vector.Index) {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	idx, err := vector.NewIndex(dim)
	require.NoError(t, err)
	engine := NewEngine(store, emb, idx, nil, testSearchConfig(), zap.NewNop())
	return engine, store, idx
}

func TestEngine_SemanticRoundTrip(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{dim: 4, vectors: map[string][]float32{
		"budget planning spreadsheet": {1, 0, 0, 0},
	}}
	engine, store, idx := newTestEngine(t, emb, 4)

	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "d1", Title: "Budget", Content: "budget planning spreadsheet",
	}))
	vec, err := emb.Embed(ctx, "budget planning spreadsheet")
	require.NoError(t, err)
	require.NoError(t, idx.Insert(ctx, "d1", vec))

	resp, err := engine.Search(ctx, &models.SearchQuery{
		Query: "budget planning spreadsheet", Mode: models.ModeSemantic, Limit: 5, Threshold: 0.9,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "d1", resp.Results[0].DocumentID)
	assert.InDelta(t, 1.0, resp.Results[0].Score, 1e-5)
	assert.Equal(t, models.ProvenanceSemantic, resp.Results[0].Provenance)
	assert.Equal(t, models.ModeSemantic, resp.Mode)
}

func TestEngine_DegradedMode(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t, embedding.NewDisabled(4), 4)

	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "d1", Title: "Contract", Content: "signed contract agreement",
	}))

	// Semantic returns empty, not an error.
	resp, err := engine.Search(ctx, &models.SearchQuery{
		Query: "contract", Mode: models.ModeSemantic, Limit: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)

	// Lexical keeps working.
	resp, err = engine.Search(ctx, &models.SearchQuery{
		Query: "contract", Mode: models.ModeLexical, Limit: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "d1", resp.Results[0].DocumentID)
}

// With equal raw lexical scores, a document also found semantically must rank
// above a lexical-only document.
func TestEngine_HybridFusionOrdering(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{dim: 4, vectors: map[string][]float32{
		"invoice payment": {1, 0, 0, 0},
	}}
	engine, store, idx := newTestEngine(t, emb, 4)

	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "a", Title: "March", Content: "invoice payment pending",
	}))
	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "b", Title: "April", Content: "invoice payment overdue",
	}))
	// Only document a is semantically close to the query.
	require.NoError(t, idx.Insert(ctx, "a", []float32{1, 0, 0, 0}))
	require.NoError(t, idx.Insert(ctx, "b", []float32{0, 1, 0, 0}))

	resp, err := engine.Search(ctx, &models.SearchQuery{
		Query: "invoice payment", Mode: models.ModeHybrid, Limit: 10, Threshold: 0.1,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "a", resp.Results[0].DocumentID)
	assert.Equal(t, models.ProvenanceHybrid, resp.Results[0].Provenance)
	assert.Equal(t, "b", resp.Results[1].DocumentID)
	assert.Equal(t, models.ProvenanceLexical, resp.Results[1].Provenance)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestEngine_ThresholdAndLimitContract(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t, embedding.NewDisabled(4), 4)

	for _, d := range []*models.Document{
		{ID: "a", Content: "report report report report report"},
		{ID: "b", Content: "report report"},
		{ID: "c", Content: "report"},
	} {
		require.NoError(t, store.CreateDocument(ctx, d))
	}

	resp, err := engine.Search(ctx, &models.SearchQuery{
		Query: "report", Mode: models.ModeLexical, Limit: 2, Threshold: 0.3,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Results), 2)
	for _, r := range resp.Results {
		assert.GreaterOrEqual(t, r.Score, 0.3)
	}
}

func TestEngine_Filters(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t, embedding.NewDisabled(4), 4)

	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "a", Category: "finance", OwnerID: "u1", Content: "expense report",
	}))
	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "b", Category: "hr", OwnerID: "u2", Content: "expense report",
	}))

	resp, err := engine.Search(ctx, &models.SearchQuery{
		Query: "expense report", Mode: models.ModeLexical, Limit: 10,
		Filters: &models.SearchFilters{Category: "finance"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a", resp.Results[0].DocumentID)
	assert.True(t, resp.FiltersApplied)
}

func TestEngine_SkipsVanishedDocuments(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{dim: 4, vectors: map[string][]float32{"ghost text": {1, 0, 0, 0}}}
	engine, _, idx := newTestEngine(t, emb, 4)

	// Indexed but never stored: resolution must skip it, not fail.
	require.NoError(t, idx.Insert(ctx, "ghost", []float32{1, 0, 0, 0}))

	resp, err := engine.Search(ctx, &models.SearchQuery{
		Query: "ghost text", Mode: models.ModeSemantic, Limit: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngine_EmptyQueryRejected(t *testing.T) {
	engine, _, _ := newTestEngine(t, embedding.NewDisabled(4), 4)
	_, err := engine.Search(context.Background(), &models.SearchQuery{Query: ""})
	assert.Error(t, err)
}
