// ABOUTME: Construction-time options for the memory store
// ABOUTME: Validates the vector type, retrieval fan-out, and learning knobs
package core

import (
	"fmt"
	"time"

	"github.com/2389-research/memelord/internal/llm"
	"github.com/2389-research/memelord/internal/storage"
)

// Recognized vector type names. Only vector32 is accepted: the storage
// layer's codec is fixed at 4-byte elements, and serving another element
// width without switching the codec would corrupt every stored vector.
const (
	VectorType32 = "vector32"
	VectorType64 = "vector64"
	VectorType8  = "vector8"
	VectorType1  = "vector1"
)

// Defaults for optional knobs
const (
	DefaultDimensions   = 384
	DefaultTopK         = 5
	DefaultLearningRate = 0.1
	DefaultDecayRate    = 0.995
)

// Options configures a Store. DBPath, SessionID, and Embed are required;
// everything else defaults.
type Options struct {
	// DBPath is the database file path.
	DBPath string

	// SessionID is an opaque string stored with tasks.
	SessionID string

	// Embed computes text embeddings. It is always called with no database
	// connection open.
	Embed llm.EmbedFunc

	// VectorType names the SQL vector primitive. Only vector32 passes
	// validation.
	VectorType string

	// Dimensions is the declared vector length.
	Dimensions int

	// TopK is the retrieval fan-out, at least 1.
	TopK int

	// LearningRate is the EMA alpha in (0, 1].
	LearningRate float64

	// DecayRate is the daily decay and retrieval-recency base in (0, 1).
	DecayRate float64

	// Now supplies unix-second timestamps; tests inject a deterministic
	// clock here.
	Now func() int64
}

// withDefaults fills unset optional fields
func (o Options) withDefaults() Options {
	if o.VectorType == "" {
		o.VectorType = VectorType32
	}
	if o.Dimensions == 0 {
		o.Dimensions = DefaultDimensions
	}
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	if o.LearningRate == 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.DecayRate == 0 {
		o.DecayRate = DefaultDecayRate
	}
	if o.Now == nil {
		o.Now = func() int64 { return time.Now().Unix() }
	}
	return o
}

// validate rejects out-of-domain options
func (o Options) validate() error {
	if o.DBPath == "" {
		return fmt.Errorf("%w: dbPath is required", storage.ErrInvalidArgument)
	}
	if o.SessionID == "" {
		return fmt.Errorf("%w: sessionId is required", storage.ErrInvalidArgument)
	}
	if o.Embed == nil {
		return fmt.Errorf("%w: embed function is required", storage.ErrInvalidArgument)
	}

	switch o.VectorType {
	case VectorType32:
	case VectorType64, VectorType8, VectorType1:
		return fmt.Errorf("%w: vector type %q is recognized but unsupported; storage is fixed at 4-byte elements", storage.ErrInvalidArgument, o.VectorType)
	default:
		return fmt.Errorf("%w: unknown vector type %q", storage.ErrInvalidArgument, o.VectorType)
	}

	if o.Dimensions < 1 {
		return fmt.Errorf("%w: dimensions must be at least 1, got %d", storage.ErrInvalidArgument, o.Dimensions)
	}
	if o.TopK < 1 {
		return fmt.Errorf("%w: topK must be at least 1, got %d", storage.ErrInvalidArgument, o.TopK)
	}
	if o.LearningRate <= 0 || o.LearningRate > 1 {
		return fmt.Errorf("%w: learning rate must be in (0, 1], got %v", storage.ErrInvalidArgument, o.LearningRate)
	}
	if o.DecayRate <= 0 || o.DecayRate >= 1 {
		return fmt.Errorf("%w: decay rate must be in (0, 1), got %v", storage.ErrInvalidArgument, o.DecayRate)
	}
	return nil
}
