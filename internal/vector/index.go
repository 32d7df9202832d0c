// Package vector provides a flat, exact similarity index over normalized
// embeddings, addressed by position with an external position-to-document-id map.
package vector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// ErrDimensionMismatch is returned when a vector does not match the index dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrInconsistent is returned when the vector store and id map lengths
// disagree. Mutations are refused in that state rather than compounding it.
var ErrInconsistent = errors.New("vector store and id map length mismatch")

// Result is a single similarity search hit.
type Result struct {
	DocumentID string
	Score      float64 // inner product; cosine similarity for unit vectors, clamped to [0,1]
}

// Stats describes the index contents.
type Stats struct {
	Count       int
	SizeBytes   int64
	LastUpdated time.Time
}

// Index is an in-memory exact similarity index using brute-force inner
// product search. Position i in vectors corresponds exactly to ids[i]; the
// two slices always have equal length. All stored and query vectors must be
// unit-normalized by the caller; the index never normalizes internally.
type Index struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	updatedAt  time.Time
	mu         sync.RWMutex
}

// NewIndex creates an empty index with the given dimension.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &Index{
		dimensions: dimensions,
		ids:        make([]string, 0),
		vectors:    make([][]float32, 0),
	}, nil
}

// Dimensions returns the vector dimension the index accepts.
func (x *Index) Dimensions() int {
	return x.dimensions
}

// Insert appends the vector and documentID at the same position. The paired
// lengths are validated before and after the mutation; a state that would
// break the position/id-map invariant is refused.
func (x *Index) Insert(ctx context.Context, documentID string, vec []float32) error {
	if len(vec) != x.dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vec), x.dimensions)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	n := len(x.ids)
	if n != len(x.vectors) {
		return ErrInconsistent
	}
	stored := make([]float32, x.dimensions)
	copy(stored, vec)
	x.vectors = append(x.vectors, stored)
	x.ids = append(x.ids, documentID)
	if len(x.ids) != n+1 || len(x.vectors) != n+1 {
		// Roll back the half-applied append.
		x.ids = x.ids[:n]
		x.vectors = x.vectors[:n]
		return ErrInconsistent
	}
	x.updatedAt = time.Now()
	return nil
}

// InsertBatch inserts ids and vectors pairwise.
func (x *Index) InsertBatch(ctx context.Context, documentIDs []string, vecs [][]float32) error {
	if len(documentIDs) != len(vecs) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(documentIDs), len(vecs))
	}
	for i, id := range documentIDs {
		if err := x.Insert(ctx, id, vecs[i]); err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}
	return nil
}

// Search returns up to k document ids by inner product against query,
// descending, keeping only scores >= threshold. An empty index returns an
// empty result, not an error.
func (x *Index) Search(ctx context.Context, query []float32, k int, threshold float64) ([]Result, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(query), x.dimensions)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 || len(x.ids) == 0 {
		return nil, nil
	}
	results := make([]Result, 0, len(x.ids))
	for i, vec := range x.vectors {
		var dot float64
		for j := 0; j < x.dimensions; j++ {
			dot += float64(query[j]) * float64(vec[j])
		}
		score := math.Max(0, math.Min(1, dot))
		if score < threshold {
			continue
		}
		results = append(results, Result{DocumentID: x.ids[i], Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocumentID < results[j].DocumentID
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Remove excises every (vector, id) pair for documentID in place under the
// write lock, preserving the paired-length invariant. Reports whether
// anything was removed. O(n) in index size.
func (x *Index) Remove(documentID string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	removed := false
	newIDs := x.ids[:0]
	newVectors := x.vectors[:0]
	for i, id := range x.ids {
		if id == documentID {
			removed = true
			continue
		}
		newIDs = append(newIDs, id)
		newVectors = append(newVectors, x.vectors[i])
	}
	x.ids = newIDs
	x.vectors = newVectors
	if removed {
		x.updatedAt = time.Now()
	}
	return removed
}

// Contains reports whether documentID has an index entry.
func (x *Index) Contains(documentID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, id := range x.ids {
		if id == documentID {
			return true
		}
	}
	return false
}

// Size returns the number of indexed vectors.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Stats returns count, approximate in-memory size, and last update time.
func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var size int64
	for _, id := range x.ids {
		size += int64(len(id))
	}
	size += int64(len(x.vectors)) * int64(x.dimensions) * 4
	return Stats{
		Count:       len(x.ids),
		SizeBytes:   size,
		LastUpdated: x.updatedAt,
	}
}

// Reset clears all vectors and ids.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = x.ids[:0]
	x.vectors = x.vectors[:0]
	x.updatedAt = time.Now()
}

// checkConsistent validates the central invariant. Used by snapshot load.
func (x *Index) checkConsistent() error {
	if len(x.ids) != len(x.vectors) {
		return ErrInconsistent
	}
	return nil
}
