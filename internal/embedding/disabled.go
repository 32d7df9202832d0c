package embedding

import "context"

// Disabled is an embedder that always reports unavailable. It stands in when
// no provider is configured or provider initialization failed, so the rest of
// the engine keeps serving lexical-only results.
type Disabled struct {
	dimensions int
}

// NewDisabled returns an embedder that always returns ErrUnavailable.
func NewDisabled(dimensions int) *Disabled {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &Disabled{dimensions: dimensions}
}

func (d *Disabled) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrUnavailable
}

func (d *Disabled) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, ErrUnavailable
}

func (d *Disabled) Dimensions() int { return d.dimensions }

func (d *Disabled) Ready() bool { return false }

func (d *Disabled) Close() error { return nil }
