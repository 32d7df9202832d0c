// Package embedding provides text embedding providers behind a common interface.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the embedding model is not loaded or the
// provider was never initialized. Callers must degrade (skip semantic
// retrieval) rather than fail the whole request.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Embedder produces vector embeddings for text. Returned vectors are not
// guaranteed to be unit-normalized; callers normalize before index use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// Ready reports whether the provider can serve embeddings. A provider
	// that is not ready drives the engine into degraded mode.
	Ready() bool
	Close() error
}
