package analytics

import (
	"context"
	"testing"

	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder_Record(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rec, err := NewSQLiteRecorder(store.DB())
	require.NoError(t, err)

	ctx := context.Background()
	err = rec.Record(ctx, &Event{
		Query:       "contract renewal",
		Mode:        models.ModeHybrid,
		Filters:     &models.SearchFilters{Category: "legal"},
		RequesterID: "u1",
		ResultCount: 4,
		DurationMs:  12,
	})
	require.NoError(t, err)

	count, err := rec.CountEvents(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestSQLiteRecorder_NilFilters(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rec, err := NewSQLiteRecorder(store.DB())
	require.NoError(t, err)

	err = rec.Record(context.Background(), &Event{Query: "x", Mode: models.ModeLexical})
	require.NoError(t, err)
}
