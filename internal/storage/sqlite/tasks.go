// ABOUTME: Task row persistence: insert at start, finish with counters and score
// ABOUTME: A task row without finished_at is active from storage's perspective
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/storage"
)

// TaskStore handles task persistence
type TaskStore struct {
	q Queryer
}

// NewTaskStore creates a TaskStore over q
func NewTaskStore(q Queryer) *TaskStore {
	return &TaskStore{q: q}
}

// Insert stores a new active task row
func (s *TaskStore) Insert(t *models.Task) error {
	var blob any
	if t.Embedding != nil {
		blob = EncodeVector(t.Embedding)
	}

	_, err := s.q.Exec(`
		INSERT INTO tasks (id, session_id, description, embedding, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.SessionID, t.Description, blob, t.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Get retrieves a task by id
func (s *TaskStore) Get(id string, dims int) (*models.Task, error) {
	var (
		t          models.Task
		blob       []byte
		score      sql.NullFloat64
		finishedAt sql.NullInt64
	)

	err := s.q.QueryRow(`
		SELECT id, session_id, description, embedding, tokens_used, tool_calls, errors, user_corrections, completed, task_score, started_at, finished_at
		FROM tasks
		WHERE id = ?
	`, id).Scan(&t.ID, &t.SessionID, &t.Description, &blob, &t.TokensUsed, &t.ToolCalls, &t.Errors, &t.UserCorrections, &t.Completed, &score, &t.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	vec, err := DecodeVector(blob, dims)
	if err != nil {
		return nil, err
	}
	t.Embedding = vec
	if score.Valid {
		t.TaskScore = score.Float64
	}
	if finishedAt.Valid {
		t.FinishedAt = finishedAt.Int64
	}
	return &t, nil
}

// Finish stamps a task with its outcome counters, score, and finish time.
// Returns storage.ErrNotFound if no such task row exists.
func (s *TaskStore) Finish(id string, o models.TaskOutcome, score float64, finishedAt int64) error {
	res, err := s.q.Exec(`
		UPDATE tasks
		SET tokens_used = ?, tool_calls = ?, errors = ?, user_corrections = ?, completed = ?, task_score = ?, finished_at = ?
		WHERE id = ?
	`, o.TokensUsed, o.ToolCalls, o.Errors, o.UserCorrections, o.Completed, score, finishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to finish task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: task %s", storage.ErrNotFound, id)
	}
	return nil
}

// Count returns the total number of tasks
func (s *TaskStore) Count() (int64, error) {
	var n int64
	if err := s.q.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

// AvgScore returns the mean task_score over finished tasks, 0 if none
func (s *TaskStore) AvgScore() (float64, error) {
	var avg sql.NullFloat64
	err := s.q.QueryRow(`SELECT AVG(task_score) FROM tasks WHERE finished_at IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average task scores: %w", err)
	}
	return avg.Float64, nil
}

// AvgTokens returns the mean tokens_used over finished tasks, 0 if none.
// Feeds the initial weight of correction memories.
func (s *TaskStore) AvgTokens() (float64, error) {
	var avg sql.NullFloat64
	err := s.q.QueryRow(`SELECT AVG(tokens_used) FROM tasks WHERE finished_at IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average task tokens: %w", err)
	}
	return avg.Float64, nil
}
