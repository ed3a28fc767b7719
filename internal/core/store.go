// ABOUTME: The memory store: embedding, retrieval, credit assignment, lifecycle
// ABOUTME: Short-lived connection per operation; embeds run outside the lock
package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/2389-research/memelord/internal/llm"
	"github.com/2389-research/memelord/internal/scoring"
	"github.com/2389-research/memelord/internal/storage"
	"github.com/2389-research/memelord/internal/storage/sqlite"
)

// Store is the per-project memory store. It owns the session id, the
// current task id, and a process-local cache of the running baseline.
// It holds no open connection between operations: every public method
// opens the database, executes one transaction, and closes it, so several
// processes can work the same file concurrently.
type Store struct {
	opts          Options
	baseline      scoring.Baseline
	currentTaskID string
}

// New creates a Store. The database is untouched until Init or the first
// operation.
func New(opts Options) (*Store, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Store{opts: opts}, nil
}

// Init prepares the store: creates the schema if missing, repairs any
// truncated legacy embeddings back to pending, and loads the baseline from
// meta. Idempotent; safe to call again after Close.
func (s *Store) Init() error {
	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repaired, err := sqlite.NewMemoryStore(db).RepairTruncatedEmbeddings(s.opts.Dimensions)
	if err != nil {
		return err
	}
	if repaired > 0 {
		log.Printf("repaired %d truncated embeddings back to pending", repaired)
	}

	baseline, err := loadBaseline(db)
	if err != nil {
		return err
	}
	s.baseline = baseline
	return nil
}

// Close drops cached state. There is no persistent connection to close;
// the next operation simply reopens the file.
func (s *Store) Close() error {
	s.baseline = scoring.Baseline{}
	s.currentTaskID = ""
	return nil
}

// CurrentTaskID returns the id of the last task started in this process,
// or empty if none is active.
func (s *Store) CurrentTaskID() string {
	return s.currentTaskID
}

// Baseline returns the process-local baseline cache
func (s *Store) Baseline() scoring.Baseline {
	return s.baseline
}

// openDB opens the short-lived connection every operation runs on
func (s *Store) openDB() (*sqlite.DB, error) {
	return sqlite.Open(s.opts.DBPath)
}

// embed computes a vector for text and enforces the declared width. Called
// only while no connection is open, so a slow model never serializes the
// other processes behind the file lock.
func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.opts.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, llm.ErrEmbedFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", llm.ErrEmbedFailure, err)
	}
	if len(vec) != s.opts.Dimensions {
		return nil, fmt.Errorf("%w: embedder returned %d dimensions, want %d", llm.ErrDimensionMismatch, len(vec), s.opts.Dimensions)
	}
	return vec, nil
}

// loadBaseline reads the serialized baseline from meta, or the zero value
// if none has been written yet
func loadBaseline(db *sqlite.DB) (scoring.Baseline, error) {
	raw, err := sqlite.NewMetaStore(db).Get(sqlite.BaselineKey)
	if errors.Is(err, storage.ErrNotFound) {
		return scoring.Baseline{}, nil
	}
	if err != nil {
		return scoring.Baseline{}, err
	}
	return scoring.DecodeBaseline(raw)
}
