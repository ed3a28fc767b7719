// ABOUTME: Retrieval log persistence keyed on (memory_id, task_id)
// ABOUTME: Insert is conflict-ignored so double retrieval leaves one row
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/2389-research/memelord/internal/models"
)

// RetrievalStore handles the memory_retrievals log
type RetrievalStore struct {
	q Queryer
}

// NewRetrievalStore creates a RetrievalStore over q
func NewRetrievalStore(q Queryer) *RetrievalStore {
	return &RetrievalStore{q: q}
}

// Insert records that a memory was surfaced for a task. A duplicate
// (memory, task) pair is silently ignored.
func (s *RetrievalStore) Insert(memoryID, taskID string, similarity float64) error {
	_, err := s.q.Exec(`
		INSERT OR IGNORE INTO memory_retrievals (memory_id, task_id, similarity)
		VALUES (?, ?, ?)
	`, memoryID, taskID, similarity)
	if err != nil {
		return fmt.Errorf("failed to insert retrieval: %w", err)
	}
	return nil
}

// Rate writes the end-of-task self-report and computed credit for a pair.
// A missing pair is a no-op; rating never invents a retrieval.
func (s *RetrievalStore) Rate(memoryID, taskID string, selfReport int, credit float64) error {
	_, err := s.q.Exec(`
		UPDATE memory_retrievals
		SET self_report = ?, credit = ?
		WHERE memory_id = ? AND task_id = ?
	`, selfReport, credit, memoryID, taskID)
	if err != nil {
		return fmt.Errorf("failed to rate retrieval: %w", err)
	}
	return nil
}

// DeleteForMemory removes all retrieval rows for a memory
func (s *RetrievalStore) DeleteForMemory(memoryID string) error {
	_, err := s.q.Exec(`DELETE FROM memory_retrievals WHERE memory_id = ?`, memoryID)
	if err != nil {
		return fmt.Errorf("failed to delete retrievals: %w", err)
	}
	return nil
}

// ForTask returns the retrieval rows recorded for a task
func (s *RetrievalStore) ForTask(taskID string) ([]models.MemoryRetrieval, error) {
	rows, err := s.q.Query(`
		SELECT memory_id, task_id, similarity, self_report, credit
		FROM memory_retrievals
		WHERE task_id = ?
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query retrievals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var retrievals []models.MemoryRetrieval
	for rows.Next() {
		var (
			r      models.MemoryRetrieval
			report sql.NullInt64
			credit sql.NullFloat64
		)
		if err := rows.Scan(&r.MemoryID, &r.TaskID, &r.Similarity, &report, &credit); err != nil {
			return nil, err
		}
		if report.Valid {
			r.SelfReport = int(report.Int64)
			r.Credit = credit.Float64
			r.Rated = true
		}
		retrievals = append(retrievals, r)
	}
	return retrievals, rows.Err()
}
