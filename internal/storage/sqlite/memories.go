// ABOUTME: Memory row persistence: insert, weight updates, ranking, lifecycle
// ABOUTME: Includes the in-SQL relevance-times-recency retrieval query
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/storage"
)

// MemoryStore handles memory persistence. It runs against a Queryer so the
// same operations work standalone or inside a store-level transaction.
type MemoryStore struct {
	q Queryer
}

// NewMemoryStore creates a MemoryStore over q
func NewMemoryStore(q Queryer) *MemoryStore {
	return &MemoryStore{q: q}
}

// Insert stores a memory row. A nil Embedding persists as NULL (pending).
func (s *MemoryStore) Insert(m *models.Memory) error {
	var blob any
	if m.Embedding != nil {
		blob = EncodeVector(m.Embedding)
	}

	var lastRetrieved any
	if m.LastRetrieved != 0 {
		lastRetrieved = m.LastRetrieved
	}
	var sourceTask any
	if m.SourceTask != "" {
		sourceTask = m.SourceTask
	}

	_, err := s.q.Exec(`
		INSERT INTO memories (id, content, embedding, category, weight, initial_cost, created_at, last_retrieved, retrieval_count, source_task)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Content, blob, string(m.Category), m.Weight, m.InitialCost, m.CreatedAt, lastRetrieved, m.RetrievalCount, sourceTask)
	if err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

// Get retrieves a memory by id, decoding its embedding against dims
func (s *MemoryStore) Get(id string, dims int) (*models.Memory, error) {
	row := s.q.QueryRow(`
		SELECT id, content, embedding, category, weight, initial_cost, created_at, last_retrieved, retrieval_count, source_task
		FROM memories
		WHERE id = ?
	`, id)

	m, err := scanMemory(row.Scan, dims)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	return m, nil
}

// GetWeight reads just a memory's current weight
func (s *MemoryStore) GetWeight(id string) (float64, error) {
	var w float64
	err := s.q.QueryRow(`SELECT weight FROM memories WHERE id = ?`, id).Scan(&w)
	if err == sql.ErrNoRows {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get memory weight: %w", err)
	}
	return w, nil
}

// SetWeight writes a memory's weight. Callers clamp before writing.
func (s *MemoryStore) SetWeight(id string, weight float64) error {
	_, err := s.q.Exec(`UPDATE memories SET weight = ? WHERE id = ?`, weight, id)
	if err != nil {
		return fmt.Errorf("failed to set memory weight: %w", err)
	}
	return nil
}

// Penalize multiplies a memory's weight by factor, clamped into the weight
// bounds.
func (s *MemoryStore) Penalize(id string, factor, minWeight, maxWeight float64) error {
	_, err := s.q.Exec(`UPDATE memories SET weight = MIN(MAX(weight * ?, ?), ?) WHERE id = ?`, factor, minWeight, maxWeight, id)
	if err != nil {
		return fmt.Errorf("failed to penalize memory: %w", err)
	}
	return nil
}

// Delete removes a memory, reporting whether a row existed
func (s *MemoryStore) Delete(id string) (bool, error) {
	res, err := s.q.Exec(`DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete memory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Pending returns all memories whose embedding is still NULL, in storage
// row order. Zero-length blobs count as pending too.
func (s *MemoryStore) Pending() ([]models.Memory, error) {
	rows, err := s.q.Query(`
		SELECT id, content
		FROM memories
		WHERE embedding IS NULL OR length(embedding) = 0
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pending []models.Memory
	for rows.Next() {
		var m models.Memory
		if err := rows.Scan(&m.ID, &m.Content); err != nil {
			return nil, err
		}
		pending = append(pending, m)
	}
	return pending, rows.Err()
}

// SetEmbedding writes a computed vector back to a pending memory. The write
// is idempotent: two processes racing on the same row both store the same
// content's vector, and the second simply wins.
func (s *MemoryStore) SetEmbedding(id string, vec []float32) error {
	_, err := s.q.Exec(`UPDATE memories SET embedding = ? WHERE id = ?`, EncodeVector(vec), id)
	if err != nil {
		return fmt.Errorf("failed to set embedding: %w", err)
	}
	return nil
}

// Ranked returns the top-k memories for a query vector, ranked by
// similarity times recency decay. Memories without an embedding are
// excluded; ties break by storage row order. Score on each result is the
// cosine similarity alone.
func (s *MemoryStore) Ranked(queryVec []float32, decayRate float64, now int64, k, dims int) ([]models.RetrievedMemory, error) {
	blob := EncodeVector(queryVec)

	rows, err := s.q.Query(`
		SELECT id, content, embedding, category, weight, initial_cost, created_at, last_retrieved, retrieval_count, source_task,
		       (1.0 - vec_distance_cosine(embedding, ?)) AS similarity
		FROM memories
		WHERE embedding IS NOT NULL AND length(embedding) > 0
		ORDER BY (1.0 - vec_distance_cosine(embedding, ?)) * POWER(?, (? - COALESCE(last_retrieved, created_at)) / 86400.0) DESC,
		         rowid ASC
		LIMIT ?
	`, blob, blob, decayRate, now, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranked memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.RetrievedMemory
	for rows.Next() {
		var r models.RetrievedMemory
		m, err := scanMemoryExtra(rows.Scan, dims, &r.Score)
		if err != nil {
			return nil, err
		}
		r.Memory = *m
		results = append(results, r)
	}
	return results, rows.Err()
}

// MarkRetrieved stamps a retrieval on the memory row itself
func (s *MemoryStore) MarkRetrieved(id string, now int64) error {
	_, err := s.q.Exec(`
		UPDATE memories
		SET last_retrieved = ?, retrieval_count = retrieval_count + 1
		WHERE id = ?
	`, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark retrieval: %w", err)
	}
	return nil
}

// TopByWeight returns the n highest-weighted memories, no embedding needed.
// Score on each result is the stored weight.
func (s *MemoryStore) TopByWeight(n, dims int) ([]models.RetrievedMemory, error) {
	rows, err := s.q.Query(`
		SELECT id, content, embedding, category, weight, initial_cost, created_at, last_retrieved, retrieval_count, source_task
		FROM memories
		ORDER BY weight DESC, rowid ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.RetrievedMemory
	for rows.Next() {
		m, err := scanMemory(rows.Scan, dims)
		if err != nil {
			return nil, err
		}
		results = append(results, models.RetrievedMemory{Memory: *m, Score: m.Weight})
	}
	return results, rows.Err()
}

// Count returns the total number of memories
func (s *MemoryStore) Count() (int64, error) {
	var n int64
	if err := s.q.QueryRow(`SELECT COUNT(*) FROM memories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return n, nil
}

// DecayWeights multiplies every weight by rate in a single UPDATE, floored
// at minWeight, and returns the number of rows touched.
func (s *MemoryStore) DecayWeights(rate, minWeight float64) (int64, error) {
	res, err := s.q.Exec(`UPDATE memories SET weight = MAX(weight * ?, ?)`, rate, minWeight)
	if err != nil {
		return 0, fmt.Errorf("failed to decay weights: %w", err)
	}
	return res.RowsAffected()
}

// DeleteWornOut removes memories that decayed below threshold after having
// been tried more than minRetrievals times. The retrieval-count guard keeps
// brand-new low-weight memories alive until they get a chance.
func (s *MemoryStore) DeleteWornOut(threshold float64, minRetrievals int64) (int64, error) {
	res, err := s.q.Exec(`DELETE FROM memories WHERE weight < ? AND retrieval_count > ?`, threshold, minRetrievals)
	if err != nil {
		return 0, fmt.Errorf("failed to delete worn-out memories: %w", err)
	}
	return res.RowsAffected()
}

// PurgeBelow removes all memories under threshold, with no retrieval guard
func (s *MemoryStore) PurgeBelow(threshold float64) (int64, error) {
	res, err := s.q.Exec(`DELETE FROM memories WHERE weight < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to purge memories: %w", err)
	}
	return res.RowsAffected()
}

// RepairTruncatedEmbeddings nulls any embedding shorter than dims*4 bytes so
// the memory becomes pending again instead of serving a truncated vector.
// Returns the number of repaired rows for logging.
func (s *MemoryStore) RepairTruncatedEmbeddings(dims int) (int64, error) {
	res, err := s.q.Exec(`
		UPDATE memories
		SET embedding = NULL
		WHERE embedding IS NOT NULL AND length(embedding) < ?
	`, dims*float32Bytes)
	if err != nil {
		return 0, fmt.Errorf("failed to repair embeddings: %w", err)
	}
	return res.RowsAffected()
}

// scanMemory scans one memory row in column order
func scanMemory(scan func(...any) error, dims int) (*models.Memory, error) {
	return scanMemoryExtra(scan, dims)
}

// scanMemoryExtra scans a memory row plus any trailing columns
func scanMemoryExtra(scan func(...any) error, dims int, extra ...any) (*models.Memory, error) {
	var (
		m             models.Memory
		blob          []byte
		lastRetrieved sql.NullInt64
		sourceTask    sql.NullString
	)

	dest := []any{&m.ID, &m.Content, &blob, &m.Category, &m.Weight, &m.InitialCost, &m.CreatedAt, &lastRetrieved, &m.RetrievalCount, &sourceTask}
	dest = append(dest, extra...)
	if err := scan(dest...); err != nil {
		return nil, err
	}

	vec, err := DecodeVector(blob, dims)
	if err != nil {
		return nil, err
	}
	m.Embedding = vec
	if lastRetrieved.Valid {
		m.LastRetrieved = lastRetrieved.Int64
	}
	if sourceTask.Valid {
		m.SourceTask = sourceTask.String
	}
	return &m, nil
}
