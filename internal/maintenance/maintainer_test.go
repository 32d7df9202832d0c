package maintenance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/config"
	"github.com/docuvault/docsearch/internal/embedding"
	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
	"github.com/docuvault/docsearch/internal/vector"
)

func newTestMaintainer(t *testing.T, emb embedding.Embedder, snapshotPath string) (*Maintainer, storage.DocumentStore, *vector.Index) {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	idx, err := vector.NewIndex(emb.Dimensions())
	require.NoError(t, err)

	m, err := NewMaintainer(store, emb, idx, snapshotPath,
		&config.IndexConfig{PersistEvery: 2, Workers: 2}, 3, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, store, idx
}

func TestMaintainer_IndexDocument(t *testing.T) {
	ctx := context.Background()
	m, store, idx := newTestMaintainer(t, embedding.NewMockEmbedder(8), "")

	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "d1", Title: "Quarterly report", Content: "revenue figures",
	}))

	ack, err := m.IndexDocument(ctx, "d1", false)
	require.NoError(t, err)
	assert.True(t, ack.Accepted)
	assert.False(t, ack.AlreadyIndexed)

	require.Eventually(t, func() bool { return idx.Contains("d1") },
		2*time.Second, 10*time.Millisecond)

	// Second request without force is a no-op.
	ack, err = m.IndexDocument(ctx, "d1", false)
	require.NoError(t, err)
	assert.False(t, ack.Accepted)
	assert.True(t, ack.AlreadyIndexed)

	// Force reschedules.
	ack, err = m.IndexDocument(ctx, "d1", true)
	require.NoError(t, err)
	assert.True(t, ack.Accepted)
	require.Eventually(t, func() bool { return idx.Size() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestMaintainer_IndexDocument_UnknownDocument(t *testing.T) {
	m, _, idx := newTestMaintainer(t, embedding.NewMockEmbedder(8), "")

	_, err := m.IndexDocument(context.Background(), "missing", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Equal(t, 0, idx.Size())
}

func TestMaintainer_IndexDocument_EmbedderDown(t *testing.T) {
	ctx := context.Background()
	m, store, idx := newTestMaintainer(t, embedding.NewDisabled(8), "")

	require.NoError(t, store.CreateDocument(ctx, &models.Document{ID: "d1", Content: "text"}))

	ack, err := m.IndexDocument(ctx, "d1", false)
	require.NoError(t, err)
	assert.True(t, ack.Accepted)

	// The scheduled job fails to embed and leaves the index untouched.
	assert.Never(t, func() bool { return idx.Contains("d1") },
		200*time.Millisecond, 20*time.Millisecond)
}

func TestMaintainer_RemoveFromIndex(t *testing.T) {
	ctx := context.Background()
	m, _, idx := newTestMaintainer(t, embedding.NewMockEmbedder(4), "")

	require.NoError(t, idx.Insert(ctx, "d1", []float32{1, 0, 0, 0}))

	removed, err := m.RemoveFromIndex(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, idx.Contains("d1"))

	removed, err = m.RemoveFromIndex(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMaintainer_ReindexAll(t *testing.T) {
	ctx := context.Background()
	m, store, idx := newTestMaintainer(t, embedding.NewMockEmbedder(8), "")

	// More documents than the page size so reindex has to paginate.
	for i := 0; i < 7; i++ {
		require.NoError(t, store.CreateDocument(ctx, &models.Document{
			ID:      fmt.Sprintf("d%d", i),
			Title:   fmt.Sprintf("Doc %d", i),
			Content: "shared content body",
		}))
	}

	// Stale entry that the rebuild must drop.
	require.NoError(t, idx.Insert(ctx, "stale", make([]float32, 8)))

	ack, err := m.ReindexAll(ctx)
	require.NoError(t, err)
	assert.True(t, ack.Started)
	assert.Equal(t, int64(7), ack.TotalDocuments)

	require.Eventually(t, func() bool {
		return !m.Reindexing() && idx.Size() == 7
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, idx.Contains("stale"))
}

func TestMaintainer_Stats(t *testing.T) {
	ctx := context.Background()

	m, _, idx := newTestMaintainer(t, embedding.NewMockEmbedder(4), "")
	require.NoError(t, idx.Insert(ctx, "d1", []float32{0, 1, 0, 0}))

	st := m.Stats(ctx)
	assert.Equal(t, 1, st.TotalDocuments)
	assert.Equal(t, "healthy", st.Status)
	assert.Greater(t, st.IndexSizeBytes, int64(0))

	degraded, _, _ := newTestMaintainer(t, embedding.NewDisabled(4), "")
	st = degraded.Stats(ctx)
	assert.Equal(t, "degraded", st.Status)
}

func TestMaintainer_PersistAndRestore(t *testing.T) {
	ctx := context.Background()
	snapshot := filepath.Join(t.TempDir(), "index.bin")
	emb := embedding.NewMockEmbedder(8)

	m, store, idx := newTestMaintainer(t, emb, snapshot)
	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "d1", Title: "Persisted", Content: "snapshot round trip",
	}))

	_, err := m.IndexDocument(ctx, "d1", false)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		if !idx.Contains("d1") {
			return false
		}
		_, statErr := os.Stat(snapshot)
		return statErr == nil
	}, 2*time.Second, 10*time.Millisecond)

	// A fresh maintainer restores the snapshot written by the first one.
	fresh, err := vector.NewIndex(8)
	require.NoError(t, err)
	m2, err := NewMaintainer(nil, emb, fresh, snapshot,
		&config.IndexConfig{PersistEvery: 2, Workers: 1}, 3, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(m2.Close)

	m2.Restore()
	assert.True(t, fresh.Contains("d1"))
	assert.Equal(t, 1, fresh.Size())
}
