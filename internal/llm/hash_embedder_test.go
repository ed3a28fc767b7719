// ABOUTME: Tests for the deterministic hash embedder
// ABOUTME: Verifies determinism, normalization, and content reflectivity
package llm

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(8)

	a, err := e.Embed(context.Background(), "fix auth middleware")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := e.Embed(context.Background(), "fix auth middleware")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Embed() not deterministic at position %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestHashEmbedder_Dimensions(t *testing.T) {
	e := NewHashEmbedder(8)
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions() = %d, want 8", e.Dimensions())
	}

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 8 {
		t.Errorf("Embed() returned %d dimensions, want 8", len(vec))
	}
}

func TestHashEmbedder_Normalized(t *testing.T) {
	e := NewHashEmbedder(8)

	vec, err := e.Embed(context.Background(), "some text worth embedding")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("squared norm = %v, want 1.0", norm)
	}
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	e := NewHashEmbedder(8)

	vec, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("empty text position %d = %v, want 0", i, v)
		}
	}
}

func TestHashEmbedder_ContentReflective(t *testing.T) {
	e := NewHashEmbedder(8)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "auth middleware")
	same, _ := e.Embed(ctx, "auth middleware")
	other, _ := e.Embed(ctx, "0123")

	simSame := cosine(query, same)
	simOther := cosine(query, other)

	if simSame <= simOther {
		t.Errorf("identical text similarity %v should exceed unrelated text similarity %v", simSame, simOther)
	}
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
