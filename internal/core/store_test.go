// ABOUTME: End-to-end tests for the memory store task loop
// ABOUTME: Retrieval, credit assignment, decay eviction, contradiction
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/2389-research/memelord/internal/llm"
	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/storage"
)

const testDims = 8

// newTestStore builds an initialized store on a temp database with the
// deterministic hash embedder
func newTestStore(t *testing.T) *Store {
	return newTestStoreWith(t, func(o *Options) {})
}

func newTestStoreWith(t *testing.T, mutate func(*Options)) *Store {
	t.Helper()

	opts := Options{
		DBPath:     filepath.Join(t.TempDir(), "memory.db"),
		SessionID:  "test-session",
		Embed:      llm.NewHashEmbedder(testDims).Embed,
		Dimensions: testDims,
	}
	mutate(&opts)

	store, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func findMemory(t *testing.T, store *Store, id string) *models.RetrievedMemory {
	t.Helper()
	memories, err := store.TopByWeight(100)
	if err != nil {
		t.Fatalf("TopByWeight() error = %v", err)
	}
	for i := range memories {
		if memories[i].ID == id {
			return &memories[i]
		}
	}
	return nil
}

func TestStartTask_RetrievesRelevantMemory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	memID, err := store.ReportUserInput(ctx, "always install dependencies with pnpm in this repo", "user_input")
	if err != nil {
		t.Fatalf("ReportUserInput() error = %v", err)
	}

	taskID, memories, err := store.StartTask(ctx, "install the project dependencies with pnpm")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if taskID == "" {
		t.Fatal("StartTask() returned empty task id")
	}
	if len(memories) != 1 {
		t.Fatalf("memories = %d, want 1", len(memories))
	}
	if memories[0].ID != memID {
		t.Errorf("retrieved %s, want %s", memories[0].ID, memID)
	}
	if memories[0].Score <= 0.5 {
		t.Errorf("Score = %v, want > 0.5 for closely related text", memories[0].Score)
	}

	// Retrieval is stamped on the memory row
	got := findMemory(t, store, memID)
	if got == nil {
		t.Fatal("memory vanished")
	}
	if got.RetrievalCount != 1 {
		t.Errorf("RetrievalCount = %d, want 1", got.RetrievalCount)
	}
	if store.CurrentTaskID() != taskID {
		t.Errorf("CurrentTaskID() = %q, want %q", store.CurrentTaskID(), taskID)
	}
}

func TestStartTask_TopKExceedsRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.ReportUserInput(ctx, "only one memory exists", "user_input"); err != nil {
		t.Fatalf("ReportUserInput() error = %v", err)
	}

	// TopK defaults to 5; one stored memory yields one result, not an error
	_, memories, err := store.StartTask(ctx, "anything at all")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if len(memories) != 1 {
		t.Errorf("memories = %d, want 1", len(memories))
	}
}

func TestEndTask_CreditIncreasesWeight(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Seed the baseline with one expensive failed task so a cheap completed
	// task scores well above zero.
	seedID, _, err := store.StartTask(ctx, "expensive flailing work")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	err = store.EndTask(seedID, models.TaskOutcome{TokensUsed: 10000, Errors: 2, Completed: false}, nil)
	if err != nil {
		t.Fatalf("EndTask() error = %v", err)
	}

	memID, err := store.ReportUserInput(ctx, "run gofmt before committing", "user_input")
	if err != nil {
		t.Fatalf("ReportUserInput() error = %v", err)
	}
	before := findMemory(t, store, memID).Weight

	taskID, memories, err := store.StartTask(ctx, "format the code and commit")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if len(memories) == 0 {
		t.Fatal("no memories retrieved")
	}

	err = store.EndTask(taskID, models.TaskOutcome{TokensUsed: 500, Completed: true},
		[]models.SelfReport{{MemoryID: memID, Rating: 3}})
	if err != nil {
		t.Fatalf("EndTask() error = %v", err)
	}

	after := findMemory(t, store, memID).Weight
	if after <= before {
		t.Errorf("weight = %v, want > %v after an essential rating on a good task", after, before)
	}
	if store.CurrentTaskID() != "" {
		t.Errorf("CurrentTaskID() = %q, want empty after EndTask", store.CurrentTaskID())
	}
}

func TestTaskLoop_EvictsUnhelpfulMemory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	goodID, err := store.InsertRawMemory("tests run with make check", "insight", 1.0)
	if err != nil {
		t.Fatalf("InsertRawMemory() error = %v", err)
	}
	badID, err := store.InsertRawMemory("the build system is bazel", "insight", 1.0)
	if err != nil {
		t.Fatalf("InsertRawMemory() error = %v", err)
	}
	if _, err := store.EmbedPending(ctx); err != nil {
		t.Fatalf("EmbedPending() error = %v", err)
	}

	// Thirty rounds of the loop: the good memory keeps earning credit, the
	// bad one keeps getting rated useless and sinks until decay removes it.
	for round := 0; round < 30; round++ {
		taskID, _, err := store.StartTask(ctx, fmt.Sprintf("run the test suite, round %d", round))
		if err != nil {
			t.Fatalf("round %d StartTask() error = %v", round, err)
		}

		err = store.EndTask(taskID, models.TaskOutcome{TokensUsed: 1000, Completed: true},
			[]models.SelfReport{
				{MemoryID: goodID, Rating: 3},
				{MemoryID: badID, Rating: 0},
			})
		if err != nil {
			t.Fatalf("round %d EndTask() error = %v", round, err)
		}

		if _, err := store.Decay(); err != nil {
			t.Fatalf("round %d Decay() error = %v", round, err)
		}
	}

	if m := findMemory(t, store, badID); m != nil {
		t.Errorf("unhelpful memory still present with weight %v, want evicted", m.Weight)
	}
	good := findMemory(t, store, goodID)
	if good == nil {
		t.Fatal("helpful memory was evicted")
	}
	if good.Weight < 0.5 {
		t.Errorf("helpful memory weight = %v, want >= 0.5", good.Weight)
	}
}

func TestDecay_SparesUntriedMemories(t *testing.T) {
	store := newTestStore(t)

	id, err := store.InsertRawMemory("a lesson that never got a chance", "insight", 0.12)
	if err != nil {
		t.Fatalf("InsertRawMemory() error = %v", err)
	}

	// Weight is already below the deletion threshold, but with zero
	// retrievals decay must not remove it.
	for i := 0; i < 10; i++ {
		if _, err := store.Decay(); err != nil {
			t.Fatalf("Decay() error = %v", err)
		}
	}

	if findMemory(t, store, id) == nil {
		t.Error("untried memory was deleted by decay")
	}
}

func TestContradictMemory_WithCorrection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wrongID, err := store.ReportUserInput(ctx, "the API listens on port 8080", "user_input")
	if err != nil {
		t.Fatalf("ReportUserInput() error = %v", err)
	}

	// Retrieve it once so a retrieval row exists to clean up
	if _, _, err := store.StartTask(ctx, "call the API on its port"); err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}

	result, err := store.ContradictMemory(ctx, wrongID, "the API listens on port 9090")
	if err != nil {
		t.Fatalf("ContradictMemory() error = %v", err)
	}
	if !result.Deleted {
		t.Error("Deleted = false, want true")
	}
	if result.CorrectionID == "" {
		t.Fatal("CorrectionID is empty, want a stored correction")
	}

	if findMemory(t, store, wrongID) != nil {
		t.Error("contradicted memory still present")
	}
	correction := findMemory(t, store, result.CorrectionID)
	if correction == nil {
		t.Fatal("correction not stored")
	}
	if correction.Weight != 2.0 {
		t.Errorf("correction weight = %v, want 2.0", correction.Weight)
	}
	if correction.Category != models.CategoryCorrection {
		t.Errorf("correction category = %q, want correction", correction.Category)
	}
}

func TestContradictMemory_Missing(t *testing.T) {
	store := newTestStore(t)

	result, err := store.ContradictMemory(context.Background(), "no-such-id", "irrelevant")
	if err != nil {
		t.Fatalf("ContradictMemory() error = %v", err)
	}
	if result.Deleted {
		t.Error("Deleted = true, want false for missing memory")
	}
	if result.CorrectionID != "" {
		t.Errorf("CorrectionID = %q, want empty when nothing was contradicted", result.CorrectionID)
	}
}

func TestInsertRawMemory_PendingUntilEmbedded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertRawMemory("deferred lesson", "discovery", 1.0); err != nil {
		t.Fatalf("InsertRawMemory() error = %v", err)
	}

	count, err := store.EmbedPending(ctx)
	if err != nil {
		t.Fatalf("EmbedPending() error = %v", err)
	}
	if count != 1 {
		t.Errorf("EmbedPending() = %d, want 1", count)
	}

	count, err = store.EmbedPending(ctx)
	if err != nil {
		t.Fatalf("EmbedPending() rerun error = %v", err)
	}
	if count != 0 {
		t.Errorf("EmbedPending() rerun = %d, want 0", count)
	}

	// Once embedded, the memory is retrievable
	_, memories, err := store.StartTask(ctx, "a deferred lesson, recalled")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if len(memories) != 1 {
		t.Errorf("memories = %d, want 1", len(memories))
	}
}

func TestInsertRawMemory_InvalidCategory(t *testing.T) {
	store := newTestStore(t)

	_, err := store.InsertRawMemory("content", "rumor", 1.0)
	if !errors.Is(err, storage.ErrInvalidArgument) {
		t.Errorf("InsertRawMemory() error = %v, want ErrInvalidArgument", err)
	}
}

func TestInsertRawMemory_ClampsWeight(t *testing.T) {
	store := newTestStore(t)

	id, err := store.InsertRawMemory("overweighted", "insight", 100)
	if err != nil {
		t.Fatalf("InsertRawMemory() error = %v", err)
	}

	m := findMemory(t, store, id)
	if m == nil {
		t.Fatal("memory not stored")
	}
	if m.Weight != 5.0 {
		t.Errorf("weight = %v, want clamped to 5.0", m.Weight)
	}
}

func TestStartTask_EmbedFailureLeavesNoTask(t *testing.T) {
	store := newTestStoreWith(t, func(o *Options) {
		o.Embed = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model offline")
		}
	})

	_, _, err := store.StartTask(context.Background(), "doomed task")
	if !errors.Is(err, llm.ErrEmbedFailure) {
		t.Fatalf("StartTask() error = %v, want ErrEmbedFailure", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TaskCount != 0 {
		t.Errorf("TaskCount = %d, want 0 after a failed start", stats.TaskCount)
	}
}

func TestStartTask_DimensionMismatch(t *testing.T) {
	store := newTestStoreWith(t, func(o *Options) {
		o.Embed = func(ctx context.Context, text string) ([]float32, error) {
			return make([]float32, testDims/2), nil
		}
	})

	_, _, err := store.StartTask(context.Background(), "short vector task")
	if !errors.Is(err, llm.ErrDimensionMismatch) {
		t.Errorf("StartTask() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestEndTask_UnknownMemoryIsSkipped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	taskID, _, err := store.StartTask(ctx, "some task")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}

	// A self-report naming a vanished memory must not fail the whole task
	err = store.EndTask(taskID, models.TaskOutcome{Completed: true},
		[]models.SelfReport{{MemoryID: "deleted-meanwhile", Rating: 3}})
	if err != nil {
		t.Errorf("EndTask() error = %v", err)
	}
}

func TestEndTask_MissingTask(t *testing.T) {
	store := newTestStore(t)

	err := store.EndTask("never-started", models.TaskOutcome{}, nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("EndTask() error = %v, want ErrNotFound", err)
	}
}

func TestEndTask_BaselinePersistsAcrossProcesses(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memory.db")
	open := func() *Store {
		store, err := New(Options{
			DBPath:     dbPath,
			SessionID:  "s",
			Embed:      llm.NewHashEmbedder(testDims).Embed,
			Dimensions: testDims,
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := store.Init(); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		return store
	}

	first := open()
	taskID, _, err := first.StartTask(context.Background(), "work")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if err := first.EndTask(taskID, models.TaskOutcome{TokensUsed: 4000, Completed: true}, nil); err != nil {
		t.Fatalf("EndTask() error = %v", err)
	}
	_ = first.Close()

	// A fresh store on the same file sees the folded-in outcome
	second := open()
	defer func() { _ = second.Close() }()

	baseline := second.Baseline()
	if baseline.Count != 1 {
		t.Errorf("baseline Count = %d, want 1", baseline.Count)
	}
	if baseline.MeanTokens != 4000 {
		t.Errorf("baseline MeanTokens = %v, want 4000", baseline.MeanTokens)
	}
}

func TestReportCorrection_WeightScalesWithWaste(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Establish an average of 1000 tokens per task
	taskID, _, err := store.StartTask(ctx, "calibration task")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if err := store.EndTask(taskID, models.TaskOutcome{TokensUsed: 1000, Completed: true}, nil); err != nil {
		t.Fatalf("EndTask() error = %v", err)
	}

	// A correction that wasted two average tasks' worth starts at 3.0
	id, err := store.ReportCorrection(ctx, CorrectionReport{
		Lesson:       "never touch the generated files",
		WhatFailed:   "editing generated protobuf code",
		WhatWorked:   "changing the proto source",
		TokensWasted: 2000,
	})
	if err != nil {
		t.Fatalf("ReportCorrection() error = %v", err)
	}

	m := findMemory(t, store, id)
	if m == nil {
		t.Fatal("correction not stored")
	}
	if m.Weight != 3.0 {
		t.Errorf("weight = %v, want 3.0", m.Weight)
	}
	if m.InitialCost != 2000 {
		t.Errorf("InitialCost = %d, want 2000", m.InitialCost)
	}
}

func TestPenalizeMemory_InvalidFactor(t *testing.T) {
	store := newTestStore(t)

	if err := store.PenalizeMemory("id", -1); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Errorf("PenalizeMemory(-1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestTopByWeight_InvalidCount(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.TopByWeight(0); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Errorf("TopByWeight(0) error = %v, want ErrInvalidArgument", err)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.ReportUserInput(ctx, "a fact", "user_input"); err != nil {
		t.Fatalf("ReportUserInput() error = %v", err)
	}
	taskID, _, err := store.StartTask(ctx, "some work")
	if err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if err := store.EndTask(taskID, models.TaskOutcome{Completed: true}, nil); err != nil {
		t.Fatalf("EndTask() error = %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalMemories != 1 {
		t.Errorf("TotalMemories = %d, want 1", stats.TotalMemories)
	}
	if stats.TaskCount != 1 {
		t.Errorf("TaskCount = %d, want 1", stats.TaskCount)
	}
	if len(stats.TopMemories) != 1 {
		t.Errorf("TopMemories = %d, want 1", len(stats.TopMemories))
	}
}
