// Package maintenance keeps the vector index synchronized with the document
// store: scheduling document indexing, handling removal, and running full
// reindex passes.
package maintenance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/config"
	"github.com/docuvault/docsearch/internal/embedding"
	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
	"github.com/docuvault/docsearch/internal/vector"
	"github.com/docuvault/docsearch/pkg/utils"
)

// IndexAck acknowledges an indexDocument request. Accepted means indexing was
// scheduled, not that it completed.
type IndexAck struct {
	Accepted       bool `json:"accepted"`
	AlreadyIndexed bool `json:"already_indexed"`
}

// ReindexAck acknowledges a reindexAll request.
type ReindexAck struct {
	Started        bool  `json:"started"`
	TotalDocuments int64 `json:"total_documents"`
}

// IndexStats describes the index for the stats operation.
type IndexStats struct {
	TotalDocuments int       `json:"total_documents"`
	IndexSizeBytes int64     `json:"index_size_bytes"`
	LastUpdated    time.Time `json:"last_updated"`
	Status         string    `json:"status"` // "healthy" or "degraded"
}

// Maintainer owns all index mutations. Mutations are serialized behind a
// single-writer mutex; searches read the index concurrently and may observe
// the index before or after a concurrent mutation (accepted weak consistency).
type Maintainer struct {
	store        storage.DocumentStore
	embedder     embedding.Embedder
	index        *vector.Index
	snapshotPath string
	persistEvery int
	pageSize     int
	pool         *ants.Pool
	logger       *zap.Logger

	mu            sync.Mutex // serializes insert/remove/reindex
	reindexing    atomic.Bool
	reindexCancel context.CancelFunc
}

// NewMaintainer creates a maintainer with a background worker pool.
func NewMaintainer(
	store storage.DocumentStore,
	embedder embedding.Embedder,
	index *vector.Index,
	snapshotPath string,
	cfg *config.IndexConfig,
	pageSize int,
	logger *zap.Logger,
) (*Maintainer, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	if pageSize <= 0 {
		pageSize = 200
	}
	persistEvery := cfg.PersistEvery
	if persistEvery <= 0 {
		persistEvery = 50
	}
	return &Maintainer{
		store:        store,
		embedder:     embedder,
		index:        index,
		snapshotPath: snapshotPath,
		persistEvery: persistEvery,
		pageSize:     pageSize,
		pool:         pool,
		logger:       logger,
	}, nil
}

// Restore loads the persisted snapshot into the index. A corrupt snapshot is
// logged and discarded; the index starts empty pending a reindex.
func (m *Maintainer) Restore() {
	loaded, err := m.index.Load(m.snapshotPath)
	if err != nil {
		m.logger.Warn("vector index snapshot unusable, starting empty (run reindex)",
			zap.String("path", m.snapshotPath), zap.Error(err))
		return
	}
	if loaded {
		m.logger.Info("vector index restored", zap.Int("documents", m.index.Size()))
	}
}

// IndexDocument schedules embedding and insertion of the document. It is
// idempotent by default: an already indexed document is a no-op unless force
// is set. The returned ack means the work was scheduled, not completed.
func (m *Maintainer) IndexDocument(ctx context.Context, documentID string, force bool) (IndexAck, error) {
	doc, err := m.store.GetDocument(ctx, documentID)
	if err != nil {
		return IndexAck{}, err
	}
	if !force && m.index.Contains(documentID) {
		return IndexAck{Accepted: false, AlreadyIndexed: true}, nil
	}
	if err := m.pool.Submit(func() {
		m.indexOne(context.Background(), doc, force)
	}); err != nil {
		return IndexAck{}, fmt.Errorf("schedule indexing: %w", err)
	}
	return IndexAck{Accepted: true}, nil
}

// indexOne embeds one document and inserts it into the index. Failures are
// logged and dropped rather than leaving the index half-mutated.
func (m *Maintainer) indexOne(ctx context.Context, doc *models.Document, force bool) {
	vec, err := m.embedder.Embed(ctx, embedText(doc))
	if err != nil {
		m.logger.Warn("embedding failed, document not indexed",
			zap.String("doc_id", doc.ID), zap.Error(err))
		return
	}
	utils.NormalizeL2(vec)

	m.mu.Lock()
	if m.index.Contains(doc.ID) {
		if !force {
			m.mu.Unlock()
			return
		}
		m.index.Remove(doc.ID)
	}
	err = m.index.Insert(ctx, doc.ID, vec)
	m.mu.Unlock()
	if err != nil {
		m.logger.Error("index insert failed", zap.String("doc_id", doc.ID), zap.Error(err))
		return
	}
	m.persist()
	m.logger.Debug("document indexed", zap.String("doc_id", doc.ID))
}

// RemoveFromIndex removes the document's entry and re-persists the snapshot.
func (m *Maintainer) RemoveFromIndex(ctx context.Context, documentID string) (bool, error) {
	m.mu.Lock()
	removed := m.index.Remove(documentID)
	m.mu.Unlock()
	if removed {
		m.persist()
	}
	return removed, nil
}

// ReindexAll starts a background pass that re-embeds and re-inserts every
// document in the store, persisting every persistEvery documents so a crash
// mid-pass does not lose all progress. Per-document failures are logged and
// skipped. Returns started=false if a pass is already running.
func (m *Maintainer) ReindexAll(ctx context.Context) (ReindexAck, error) {
	total, err := m.store.CountDocuments(ctx)
	if err != nil {
		return ReindexAck{}, fmt.Errorf("count documents: %w", err)
	}
	if !m.reindexing.CompareAndSwap(false, true) {
		return ReindexAck{Started: false, TotalDocuments: total}, nil
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	m.reindexCancel = cancel
	if err := m.pool.Submit(func() {
		defer cancel()
		defer m.reindexing.Store(false)
		m.reindexAll(jobCtx)
	}); err != nil {
		cancel()
		m.reindexing.Store(false)
		return ReindexAck{}, fmt.Errorf("schedule reindex: %w", err)
	}
	return ReindexAck{Started: true, TotalDocuments: total}, nil
}

func (m *Maintainer) reindexAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.index.Reset()
	indexed := 0
	skipped := 0
	offset := 0
	for {
		docs, err := m.store.ListDocuments(ctx, offset, m.pageSize)
		if err != nil {
			m.logger.Error("reindex: list documents failed", zap.Int("offset", offset), zap.Error(err))
			break
		}
		for _, doc := range docs {
			// Cancellable between per-document iterations; the snapshot only
			// ever contains fully-formed entries.
			if ctx.Err() != nil {
				m.logger.Info("reindex cancelled",
					zap.Int("indexed", indexed), zap.Int("skipped", skipped))
				m.persist()
				return
			}
			vec, err := m.embedder.Embed(ctx, embedText(doc))
			if err != nil {
				skipped++
				m.logger.Warn("reindex: embedding failed, skipping document",
					zap.String("doc_id", doc.ID), zap.Error(err))
				continue
			}
			utils.NormalizeL2(vec)
			if err := m.index.Insert(ctx, doc.ID, vec); err != nil {
				skipped++
				m.logger.Warn("reindex: insert failed, skipping document",
					zap.String("doc_id", doc.ID), zap.Error(err))
				continue
			}
			indexed++
			if indexed%m.persistEvery == 0 {
				m.persist()
			}
		}
		if len(docs) < m.pageSize {
			break
		}
		offset += m.pageSize
	}
	m.persist()
	m.logger.Info("reindex complete", zap.Int("indexed", indexed), zap.Int("skipped", skipped))
}

// Reindexing reports whether a reindex pass is currently running.
func (m *Maintainer) Reindexing() bool {
	return m.reindexing.Load()
}

// Stats reports index size and health. Status is "degraded" while the
// embedding provider is unavailable (semantic search disabled, lexical still
// functional).
func (m *Maintainer) Stats(ctx context.Context) IndexStats {
	st := m.index.Stats()
	status := "healthy"
	if !m.embedder.Ready() {
		status = "degraded"
	}
	return IndexStats{
		TotalDocuments: st.Count,
		IndexSizeBytes: st.SizeBytes,
		LastUpdated:    st.LastUpdated,
		Status:         status,
	}
}

// persist saves the snapshot. Persistence failures are transient I/O: logged,
// the index keeps operating in memory, and the data-loss risk is surfaced in
// the log rather than hidden.
func (m *Maintainer) persist() {
	if m.snapshotPath == "" {
		return
	}
	if err := m.index.Save(m.snapshotPath); err != nil {
		m.logger.Error("persist vector index failed, continuing in memory",
			zap.String("path", m.snapshotPath), zap.Error(err))
	}
}

// Close cancels any running reindex and releases the worker pool.
func (m *Maintainer) Close() {
	if m.reindexCancel != nil {
		m.reindexCancel()
	}
	m.pool.Release()
}

// embedText is the canonical text fed to the embedding provider for a
// document. The provider does not restrict length; truncation to the model
// window happens downstream.
func embedText(doc *models.Document) string {
	parts := make([]string, 0, 3)
	if doc.Title != "" {
		parts = append(parts, doc.Title)
	}
	if doc.Content != "" {
		parts = append(parts, doc.Content)
	}
	if len(parts) == 0 && doc.Excerpt != "" {
		parts = append(parts, doc.Excerpt)
	}
	return strings.Join(parts, "\n")
}
