// ABOUTME: Embedding provider contract injected into the memory store
// ABOUTME: The core never computes embeddings itself; it calls an EmbedFunc
package llm

import (
	"context"
	"errors"
)

// EmbedFunc maps text to a fixed-length float vector. Implementations must
// be safe to call with no database connection open; the store guarantees it
// never holds one across a call.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

var (
	// ErrEmbedFailure means the embedding provider failed; the originating
	// store operation fails with it.
	ErrEmbedFailure = errors.New("llm: embedding failed")

	// ErrDimensionMismatch means the provider returned a vector of a
	// different length than the store was configured for.
	ErrDimensionMismatch = errors.New("llm: embedding dimension mismatch")
)
