// ABOUTME: Memory intake: corrections, user input, raw inserts, and embedding
// ABOUTME: Hot-path inserts defer embedding; EmbedPending fills them in later
package core

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/scoring"
	"github.com/2389-research/memelord/internal/storage"
	"github.com/2389-research/memelord/internal/storage/sqlite"
)

// CorrectionReport describes a correction worth remembering
type CorrectionReport struct {
	Lesson       string
	WhatFailed   string
	WhatWorked   string
	TokensWasted int64
	ToolsWasted  int64
}

// ReportCorrection stores a correction memory, embedded synchronously. The
// initial weight scales with how many tokens the mistake wasted relative to
// an average task.
func (s *Store) ReportCorrection(ctx context.Context, report CorrectionReport) (string, error) {
	content := fmt.Sprintf("%s\n\nFailed approach: %s\nWorking approach: %s", report.Lesson, report.WhatFailed, report.WhatWorked)

	vec, err := s.embed(ctx, content)
	if err != nil {
		return "", err
	}

	db, err := s.openDB()
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	id := uuid.New().String()
	err = db.WithTx(func(tx *sql.Tx) error {
		avgTokens, err := sqlite.NewTaskStore(tx).AvgTokens()
		if err != nil {
			return err
		}

		return sqlite.NewMemoryStore(tx).Insert(&models.Memory{
			ID:          id,
			Content:     content,
			Embedding:   vec,
			Category:    models.CategoryCorrection,
			Weight:      scoring.CorrectionWeight(report.TokensWasted, avgTokens),
			InitialCost: report.TokensWasted,
			CreatedAt:   s.opts.Now(),
			SourceTask:  s.currentTaskID,
		})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ReportUserInput stores something the user said as a user-category memory,
// weighted by how the input arrived (denial, correction, or plain input).
func (s *Store) ReportUserInput(ctx context.Context, lesson, source string) (string, error) {
	vec, err := s.embed(ctx, lesson)
	if err != nil {
		return "", err
	}

	db, err := s.openDB()
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	id := uuid.New().String()
	err = sqlite.NewMemoryStore(db).Insert(&models.Memory{
		ID:         id,
		Content:    lesson,
		Embedding:  vec,
		Category:   models.CategoryUser,
		Weight:     scoring.UserSourceWeight(source),
		CreatedAt:  s.opts.Now(),
		SourceTask: s.currentTaskID,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// InsertRawMemory stores a memory with no embedding, for hot-path callers
// that cannot afford an embedding round-trip. The row stays pending and
// invisible to retrieval until EmbedPending processes it.
func (s *Store) InsertRawMemory(content, category string, weight float64) (string, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}

	db, err := s.openDB()
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	id := uuid.New().String()
	err = sqlite.NewMemoryStore(db).Insert(&models.Memory{
		ID:         id,
		Content:    content,
		Category:   cat,
		Weight:     scoring.ClampWeight(weight),
		CreatedAt:  s.opts.Now(),
		SourceTask: s.currentTaskID,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// EmbedPending embeds every memory whose vector is still NULL and writes
// the results back in one short transaction. The row set is read and the
// connection closed before any model call, so inference never runs behind
// the file lock. Safe to race from multiple processes: both compute the
// same content's vector and the second write is a no-op in effect.
func (s *Store) EmbedPending(ctx context.Context) (int, error) {
	db, err := s.openDB()
	if err != nil {
		return 0, err
	}
	pending, err := sqlite.NewMemoryStore(db).Pending()
	_ = db.Close()
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	vectors := make(map[string][]float32, len(pending))
	for _, m := range pending {
		vec, err := s.embed(ctx, m.Content)
		if err != nil {
			return 0, err
		}
		vectors[m.ID] = vec
	}

	db, err = s.openDB()
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	err = db.WithTx(func(tx *sql.Tx) error {
		memories := sqlite.NewMemoryStore(tx)
		for _, m := range pending {
			if err := memories.SetEmbedding(m.ID, vectors[m.ID]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// ContradictMemory deletes a memory and its retrieval rows. When a
// correction is supplied and the delete succeeded, it is stored as a new
// correction memory at weight 2.0. The replacement is embedded after the
// delete has committed; if embedding fails the delete stands and the
// result reports Deleted without a correction id.
func (s *Store) ContradictMemory(ctx context.Context, memoryID, correction string) (models.ContradictResult, error) {
	db, err := s.openDB()
	if err != nil {
		return models.ContradictResult{}, err
	}

	var deleted bool
	err = db.WithTx(func(tx *sql.Tx) error {
		if err := sqlite.NewRetrievalStore(tx).DeleteForMemory(memoryID); err != nil {
			return err
		}
		var err error
		deleted, err = sqlite.NewMemoryStore(tx).Delete(memoryID)
		return err
	})
	_ = db.Close()
	if err != nil {
		return models.ContradictResult{}, err
	}

	if !deleted || correction == "" {
		return models.ContradictResult{Deleted: deleted}, nil
	}

	vec, err := s.embed(ctx, correction)
	if err != nil {
		return models.ContradictResult{Deleted: true}, err
	}

	db, err = s.openDB()
	if err != nil {
		return models.ContradictResult{Deleted: true}, err
	}
	defer func() { _ = db.Close() }()

	correctionID := uuid.New().String()
	err = sqlite.NewMemoryStore(db).Insert(&models.Memory{
		ID:         correctionID,
		Content:    correction,
		Embedding:  vec,
		Category:   models.CategoryCorrection,
		Weight:     contradictionWeight,
		CreatedAt:  s.opts.Now(),
		SourceTask: s.currentTaskID,
	})
	if err != nil {
		return models.ContradictResult{Deleted: true}, err
	}

	return models.ContradictResult{Deleted: true, CorrectionID: correctionID}, nil
}

// contradictionWeight is the starting weight of a correction that replaces
// a contradicted memory.
const contradictionWeight = 2.0
