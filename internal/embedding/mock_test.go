package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()
	a, err := e.Embed(ctx, "invoice scanning")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "invoice scanning")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d: %f vs %f", i, a[i], b[i])
		}
	}
	c, _ := e.Embed(ctx, "totally different text")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	e := NewMockEmbedder(16)
	v, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
		t.Errorf("norm = %f, want 1", math.Sqrt(sum))
	}
}

func TestDisabled(t *testing.T) {
	e := NewDisabled(8)
	if e.Ready() {
		t.Error("disabled embedder reports ready")
	}
	if _, err := e.Embed(context.Background(), "x"); err != ErrUnavailable {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
