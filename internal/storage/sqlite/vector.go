// ABOUTME: Float32 vector codec and the vec_distance_cosine SQL function
// ABOUTME: Vectors are raw little-endian IEEE-754 float32 arrays, 4 bytes each
package sqlite

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/2389-research/memelord/internal/storage"
	sqlite3 "modernc.org/sqlite"
)

// float32Bytes is the element width of a stored vector
const float32Bytes = 4

func init() {
	// Registered once per process; the ranking query calls this so the
	// engine vectorizes the distance over the row set.
	if err := sqlite3.RegisterDeterministicScalarFunction("vec_distance_cosine", 2, vecDistanceCosine); err != nil {
		panic(fmt.Sprintf("register vec_distance_cosine: %v", err))
	}
}

// EncodeVector serializes a vector to its blob form. Readers and writers
// must not widen, narrow, or byte-swap the representation.
func EncodeVector(vec []float32) []byte {
	blob := make([]byte, len(vec)*float32Bytes)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(blob[i*float32Bytes:], math.Float32bits(v))
	}
	return blob
}

// DecodeVector parses a stored blob, enforcing the declared dimensionality.
// A nil or zero-length blob decodes to nil (the pending state); any other
// length except dims*4 fails with storage.ErrSchemaMismatch.
func DecodeVector(blob []byte, dims int) ([]float32, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob) != dims*float32Bytes {
		return nil, fmt.Errorf("%w: blob is %d bytes, want %d", storage.ErrSchemaMismatch, len(blob), dims*float32Bytes)
	}

	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*float32Bytes:]))
	}
	return vec, nil
}

// vecDistanceCosine implements the SQL function vec_distance_cosine(a, b),
// returning 1 - cosine similarity. Mismatched or misaligned operands abort
// the query so a corrupt vector is never silently truncated.
func vecDistanceCosine(ctx *sqlite3.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, ok := args[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("vec_distance_cosine: first argument is not a blob")
	}
	b, ok := args[1].([]byte)
	if !ok {
		return nil, fmt.Errorf("vec_distance_cosine: second argument is not a blob")
	}
	if len(a)%float32Bytes != 0 || len(b)%float32Bytes != 0 {
		return nil, fmt.Errorf("vec_distance_cosine: misaligned vector blob (%d and %d bytes)", len(a), len(b))
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("vec_distance_cosine: dimension mismatch (%d vs %d bytes)", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := 0; i < len(a); i += float32Bytes {
		x := float64(math.Float32frombits(binary.LittleEndian.Uint32(a[i:])))
		y := float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 1.0, nil
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}

// CosineSimilarity computes cosine similarity client-side. The ranking query
// computes the same quantity in SQL; this exists for tests and fallbacks.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
