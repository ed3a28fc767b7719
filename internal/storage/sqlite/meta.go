// ABOUTME: Key/value meta table; holds the serialized running baseline
// ABOUTME: Upserts are last-writer-wins, matching the baseline race contract
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/2389-research/memelord/internal/storage"
)

// BaselineKey is the meta key holding the serialized running baseline
const BaselineKey = "baseline"

// MetaStore handles the meta key/value table
type MetaStore struct {
	q Queryer
}

// NewMetaStore creates a MetaStore over q
func NewMetaStore(q Queryer) *MetaStore {
	return &MetaStore{q: q}
}

// Get reads a meta value, returning storage.ErrNotFound for a missing key
func (s *MetaStore) Get(key string) (string, error) {
	var value string
	err := s.q.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %q: %w", key, err)
	}
	return value, nil
}

// Set upserts a meta value
func (s *MetaStore) Set(key, value string) error {
	_, err := s.q.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %q: %w", key, err)
	}
	return nil
}
