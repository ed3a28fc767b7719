// ABOUTME: Task lifecycle: StartTask retrieval and EndTask credit assignment
// ABOUTME: Each call is one transaction; scoring math happens in memory
package core

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/scoring"
	"github.com/2389-research/memelord/internal/storage"
	"github.com/2389-research/memelord/internal/storage/sqlite"
)

// StartTask registers a new task and returns the top-k memories ranked by
// similarity to the description times recency decay. Score on each result
// is the cosine similarity, not the stored weight: retrieval measures
// relevance, while weight governs the top-by-weight surface.
//
// Pending memories are embedded first so hook-stored rows become
// searchable; a failure there is logged and does not block the task.
func (s *Store) StartTask(ctx context.Context, description string) (string, []models.RetrievedMemory, error) {
	descVec, err := s.embed(ctx, description)
	if err != nil {
		return "", nil, err
	}

	if _, err := s.EmbedPending(ctx); err != nil {
		log.Printf("embed pending before task start: %v", err)
	}

	taskID := uuid.New().String()
	now := s.opts.Now()

	db, err := s.openDB()
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = db.Close() }()

	var retrieved []models.RetrievedMemory
	err = db.WithTx(func(tx *sql.Tx) error {
		if err := sqlite.NewTaskStore(tx).Insert(&models.Task{
			ID:          taskID,
			SessionID:   s.opts.SessionID,
			Description: description,
			Embedding:   descVec,
			StartedAt:   now,
		}); err != nil {
			return err
		}

		memories := sqlite.NewMemoryStore(tx)
		retrievals := sqlite.NewRetrievalStore(tx)

		results, err := memories.Ranked(descVec, s.opts.DecayRate, now, s.opts.TopK, s.opts.Dimensions)
		if err != nil {
			return err
		}

		for _, r := range results {
			if err := retrievals.Insert(r.ID, taskID, r.Score); err != nil {
				return err
			}
			if err := memories.MarkRetrieved(r.ID, now); err != nil {
				return err
			}
		}

		retrieved = results
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	s.currentTaskID = taskID
	return taskID, retrieved, nil
}

// EndTask finishes a task: scores it against the baseline, folds the
// outcome into the baseline, and distributes credit to the rated memories
// via the EMA weight update. Everything lands in one transaction, so the
// baseline write is atomic with the task update. Self-reports naming a
// memory that no longer exists are skipped.
func (s *Store) EndTask(taskID string, outcome models.TaskOutcome, selfReports []models.SelfReport) error {
	taskScore := scoring.TaskScore(s.baseline, outcome)
	next := s.baseline.Observe(float64(outcome.TokensUsed), float64(outcome.Errors), float64(outcome.UserCorrections))
	encoded, err := next.Encode()
	if err != nil {
		return err
	}

	// Credit splits across the memories that actually helped.
	rated := 0
	for _, r := range selfReports {
		if r.Rating > 0 {
			rated++
		}
	}

	now := s.opts.Now()

	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	err = db.WithTx(func(tx *sql.Tx) error {
		if err := sqlite.NewTaskStore(tx).Finish(taskID, outcome, taskScore, now); err != nil {
			return err
		}
		if err := sqlite.NewMetaStore(tx).Set(sqlite.BaselineKey, encoded); err != nil {
			return err
		}

		memories := sqlite.NewMemoryStore(tx)
		retrievals := sqlite.NewRetrievalStore(tx)

		for _, report := range selfReports {
			credit := scoring.Credit(taskScore, report.Rating, rated)

			weight, err := memories.GetWeight(report.MemoryID)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			if err := memories.SetWeight(report.MemoryID, scoring.UpdateWeight(weight, credit, s.opts.LearningRate)); err != nil {
				return err
			}
			if err := retrievals.Rate(report.MemoryID, taskID, report.Rating, credit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.baseline = next
	if s.currentTaskID == taskID {
		s.currentTaskID = ""
	}
	return nil
}
