package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/analytics"
	"github.com/docuvault/docsearch/internal/config"
	"github.com/docuvault/docsearch/internal/embedding"
	"github.com/docuvault/docsearch/internal/lexical"
	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
	"github.com/docuvault/docsearch/internal/vector"
	"github.com/docuvault/docsearch/pkg/utils"
)

// Engine plans queries across the semantic and lexical retrievers, fuses and
// filters candidates, and resolves them against the document store.
type Engine struct {
	store    storage.DocumentStore
	semantic Retriever
	lexical  Retriever
	recorder analytics.Recorder
	config   *config.SearchConfig
	logger   *zap.Logger
}

// NewEngine creates a search engine with the given dependencies. recorder may
// be nil, in which case no analytics events are emitted.
func NewEngine(
	store storage.DocumentStore,
	embedder embedding.Embedder,
	index *vector.Index,
	recorder analytics.Recorder,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Engine {
	if recorder == nil {
		recorder = analytics.NopRecorder{}
	}
	matcher := lexical.NewMatcher(store, cfg.LexicalSaturation, cfg.ScanPageSize)
	return &Engine{
		store:    store,
		semantic: NewSemanticRetriever(embedder, index, logger),
		lexical:  NewLexicalRetriever(matcher),
		recorder: recorder,
		config:   cfg,
		logger:   logger,
	}
}

// Search runs one query per its mode and returns ranked, resolved results.
// The query is subject to an overall timeout budget; when it is exceeded the
// engine degrades to whatever a retriever produced in time rather than hanging.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if e.config.QueryTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.config.QueryTimeoutSeconds)*time.Second)
		defer cancel()
	}

	candidates, err := e.retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	results := e.resolve(ctx, query, candidates)

	response := &models.SearchResponse{
		Query:          query.Query,
		Results:        results,
		TotalResults:   len(results),
		SearchTimeMs:   time.Since(startTime).Milliseconds(),
		Mode:           query.Mode,
		FiltersApplied: !query.Filters.Empty(),
	}

	e.emitEvent(query, response)
	return response, nil
}

// retrieve dispatches to the retriever(s) selected by the query mode.
func (e *Engine) retrieve(ctx context.Context, query *models.SearchQuery) ([]models.ScoredResult, error) {
	switch query.Mode {
	case models.ModeSemantic:
		return e.semantic.Retrieve(ctx, query.Query, query.Limit, query.Threshold)
	case models.ModeLexical:
		return e.lexical.Retrieve(ctx, query.Query, query.Limit, query.Threshold)
	case models.ModeHybrid:
		return e.retrieveHybrid(ctx, query)
	default:
		return nil, fmt.Errorf("unknown search mode: %s", query.Mode)
	}
}

// retrieveHybrid runs both retrievers concurrently, each contributing at most
// half the target result count, and fuses the candidate sets. A failure on one
// path is tolerated as long as the other produced usable results.
func (e *Engine) retrieveHybrid(ctx context.Context, query *models.SearchQuery) ([]models.ScoredResult, error) {
	half := query.Limit / 2
	if half < 1 {
		half = 1
	}

	var (
		semanticResults []models.ScoredResult
		lexicalResults  []models.ScoredResult
		semanticErr     error
		lexicalErr      error
		wg              sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		semanticResults, semanticErr = e.semantic.Retrieve(ctx, query.Query, half, query.Threshold)
	}()
	go func() {
		defer wg.Done()
		lexicalResults, lexicalErr = e.lexical.Retrieve(ctx, query.Query, half, query.Threshold)
	}()
	wg.Wait()

	if semanticErr != nil && lexicalErr != nil {
		return nil, fmt.Errorf("all retrieval paths failed: %w", errors.Join(semanticErr, lexicalErr))
	}
	if semanticErr != nil {
		e.logger.Warn("semantic retrieval failed, serving lexical results", zap.Error(semanticErr))
	}
	if lexicalErr != nil {
		e.logger.Warn("lexical retrieval failed, serving semantic results", zap.Error(lexicalErr))
	}

	return Fuse(semanticResults, lexicalResults, e.config.HybridBonus, e.config.LexicalDiscount), nil
}

// resolve looks up each candidate in the document store, applies filters and
// the score threshold, and truncates to the query limit. Candidates whose
// document has disappeared are skipped.
func (e *Engine) resolve(ctx context.Context, query *models.SearchQuery, candidates []models.ScoredResult) []*models.SearchResult {
	results := make([]*models.SearchResult, 0, query.Limit)
	for _, c := range candidates {
		if len(results) >= query.Limit {
			break
		}
		if c.Score < query.Threshold {
			continue
		}
		doc, err := e.store.GetDocument(ctx, c.DocumentID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				e.logger.Warn("resolve document failed", zap.String("doc_id", c.DocumentID), zap.Error(err))
			}
			continue
		}
		if !query.Filters.Match(doc) {
			continue
		}
		results = append(results, &models.SearchResult{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Preview:    utils.Preview(doc.Excerpt, doc.Content, e.config.PreviewLength),
			Score:      c.Score,
			Provenance: c.Provenance,
			Category:   doc.Category,
			CreatedAt:  doc.CreatedAt,
			Metadata:   doc.Metadata,
		})
	}
	return results
}

// emitEvent records the query for analytics on a detached goroutine. Failures
// are logged and never affect the response.
func (e *Engine) emitEvent(query *models.SearchQuery, response *models.SearchResponse) {
	ev := &analytics.Event{
		Query:       query.Query,
		Mode:        query.Mode,
		Filters:     query.Filters,
		RequesterID: query.RequesterID,
		ResultCount: response.TotalResults,
		DurationMs:  response.SearchTimeMs,
		At:          time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.recorder.Record(ctx, ev); err != nil {
			e.logger.Warn("analytics record failed", zap.Error(err))
		}
	}()
}
