// ABOUTME: Maintenance surface: decay, purge, penalties, rankings, and stats
// ABOUTME: All pure weight operations; none of them need the embedder
package core

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/scoring"
	"github.com/2389-research/memelord/internal/storage"
	"github.com/2389-research/memelord/internal/storage/sqlite"
)

const (
	// decayDeleteThreshold is the weight below which a decayed memory is
	// removed, provided it has been tried enough times.
	decayDeleteThreshold = 0.15

	// decayMinRetrievals guards brand-new low-weight memories from
	// deletion: a memory must have been retrieved more than this many
	// times before decay may remove it.
	decayMinRetrievals = 5

	// statsTopMemories caps the top-memory list in Stats
	statsTopMemories = 10
)

// PenalizeMemory multiplies a memory's weight by factor, clamped into the
// weight bounds
func (s *Store) PenalizeMemory(memoryID string, factor float64) error {
	if math.IsNaN(factor) || factor < 0 {
		return fmt.Errorf("%w: penalty factor must be a non-negative number, got %v", storage.ErrInvalidArgument, factor)
	}

	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return sqlite.NewMemoryStore(db).Penalize(memoryID, factor, scoring.WeightMin, scoring.WeightMax)
}

// Decay multiplies every memory's weight by the decay rate, then removes
// memories that have sunk below the deletion threshold after more than
// decayMinRetrievals tries. The retrieval guard is part of the contract:
// a memory that never got a chance is not deleted for starting low.
func (s *Store) Decay() (models.DecayResult, error) {
	db, err := s.openDB()
	if err != nil {
		return models.DecayResult{}, err
	}
	defer func() { _ = db.Close() }()

	var result models.DecayResult
	err = db.WithTx(func(tx *sql.Tx) error {
		memories := sqlite.NewMemoryStore(tx)

		decayed, err := memories.DecayWeights(s.opts.DecayRate, scoring.WeightMin)
		if err != nil {
			return err
		}
		deleted, err := memories.DeleteWornOut(decayDeleteThreshold, decayMinRetrievals)
		if err != nil {
			return err
		}

		result = models.DecayResult{Decayed: decayed, Deleted: deleted}
		return nil
	})
	if err != nil {
		return models.DecayResult{}, err
	}
	return result, nil
}

// Purge deletes every memory below threshold, with no retrieval-count guard
func (s *Store) Purge(threshold float64) (int64, error) {
	if math.IsNaN(threshold) {
		return 0, fmt.Errorf("%w: purge threshold must be a number", storage.ErrInvalidArgument)
	}

	db, err := s.openDB()
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	return sqlite.NewMemoryStore(db).PurgeBelow(threshold)
}

// TopByWeight returns the n highest-weighted memories. Score on each
// result is the stored weight; no embedding is involved.
func (s *Store) TopByWeight(n int) ([]models.RetrievedMemory, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: top count must be at least 1, got %d", storage.ErrInvalidArgument, n)
	}

	db, err := s.openDB()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	return sqlite.NewMemoryStore(db).TopByWeight(n, s.opts.Dimensions)
}

// Stats summarizes the store: totals, average task score, and the top
// memories by weight
func (s *Store) Stats() (*models.Stats, error) {
	db, err := s.openDB()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	memories := sqlite.NewMemoryStore(db)
	tasks := sqlite.NewTaskStore(db)

	stats := &models.Stats{}
	if stats.TotalMemories, err = memories.Count(); err != nil {
		return nil, err
	}
	if stats.TaskCount, err = tasks.Count(); err != nil {
		return nil, err
	}
	if stats.AvgTaskScore, err = tasks.AvgScore(); err != nil {
		return nil, err
	}
	if stats.TopMemories, err = memories.TopByWeight(statsTopMemories, s.opts.Dimensions); err != nil {
		return nil, err
	}
	return stats, nil
}
