// ABOUTME: Deterministic offline embedder bucketing characters into positions
// ABOUTME: Content-reflective enough for tests and API-key-free smoke runs
package llm

import (
	"context"
	"math"
)

// HashEmbedder maps each character into a vector bucket by code point and
// L2-normalizes the result. Identical texts always embed identically, and
// texts sharing characters land near each other, which is all the retrieval
// tests need.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash embedder of the given dimensionality
func NewHashEmbedder(dims int) *HashEmbedder {
	return &HashEmbedder{dims: dims}
}

// Dimensions returns the vector length this embedder produces
func (h *HashEmbedder) Dimensions() int {
	return h.dims
}

// Embed produces the normalized bucket-count vector for text. Satisfies
// EmbedFunc; never returns an error.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	for _, r := range text {
		vec[int(r)%h.dims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
