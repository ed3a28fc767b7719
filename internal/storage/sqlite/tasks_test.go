// ABOUTME: Tests for task persistence and outcome aggregation
// ABOUTME: Finish semantics, averages over finished tasks only
package sqlite

import (
	"errors"
	"math"
	"testing"

	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/storage"
)

func TestTaskStore_InsertAndGet(t *testing.T) {
	db := openTestDB(t)
	store := NewTaskStore(db)

	task := &models.Task{
		ID:          "t1",
		SessionID:   "s1",
		Description: "fix the flaky test",
		Embedding:   []float32{1, 0, 0, 0},
		StartedAt:   1000,
	}
	if err := store.Insert(task); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := store.Get("t1", testDims)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != task.Description {
		t.Errorf("Description = %q, want %q", got.Description, task.Description)
	}
	if got.SessionID != "s1" {
		t.Errorf("SessionID = %q, want s1", got.SessionID)
	}
	if got.FinishedAt != 0 {
		t.Errorf("FinishedAt = %d, want 0 for an active task", got.FinishedAt)
	}
}

func TestTaskStore_Finish(t *testing.T) {
	db := openTestDB(t)
	store := NewTaskStore(db)

	if err := store.Insert(&models.Task{ID: "t1", Description: "d", StartedAt: 1000}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	outcome := models.TaskOutcome{
		TokensUsed:      5000,
		ToolCalls:       12,
		Errors:          1,
		UserCorrections: 0,
		Completed:       true,
	}
	if err := store.Finish("t1", outcome, 1.8, 2000); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	got, err := store.Get("t1", testDims)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TokensUsed != 5000 {
		t.Errorf("TokensUsed = %d, want 5000", got.TokensUsed)
	}
	if !got.Completed {
		t.Error("Completed = false, want true")
	}
	if got.TaskScore != 1.8 {
		t.Errorf("TaskScore = %v, want 1.8", got.TaskScore)
	}
	if got.FinishedAt != 2000 {
		t.Errorf("FinishedAt = %d, want 2000", got.FinishedAt)
	}
}

func TestTaskStore_Finish_Missing(t *testing.T) {
	db := openTestDB(t)
	store := NewTaskStore(db)

	err := store.Finish("nope", models.TaskOutcome{}, 1.0, 2000)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Finish() error = %v, want ErrNotFound", err)
	}
}

func TestTaskStore_Averages(t *testing.T) {
	db := openTestDB(t)
	store := NewTaskStore(db)

	// Two finished tasks and one active; averages only see the finished pair
	for _, id := range []string{"t1", "t2", "active"} {
		if err := store.Insert(&models.Task{ID: id, Description: "d", StartedAt: 1000}); err != nil {
			t.Fatalf("Insert(%s) error = %v", id, err)
		}
	}
	if err := store.Finish("t1", models.TaskOutcome{TokensUsed: 1000, Completed: true}, 2.0, 2000); err != nil {
		t.Fatalf("Finish(t1) error = %v", err)
	}
	if err := store.Finish("t2", models.TaskOutcome{TokensUsed: 3000}, 1.0, 2000); err != nil {
		t.Fatalf("Finish(t2) error = %v", err)
	}

	avgScore, err := store.AvgScore()
	if err != nil {
		t.Fatalf("AvgScore() error = %v", err)
	}
	if math.Abs(avgScore-1.5) > 1e-9 {
		t.Errorf("AvgScore() = %v, want 1.5", avgScore)
	}

	avgTokens, err := store.AvgTokens()
	if err != nil {
		t.Fatalf("AvgTokens() error = %v", err)
	}
	if math.Abs(avgTokens-2000) > 1e-9 {
		t.Errorf("AvgTokens() = %v, want 2000", avgTokens)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestTaskStore_Averages_Empty(t *testing.T) {
	db := openTestDB(t)
	store := NewTaskStore(db)

	avg, err := store.AvgScore()
	if err != nil {
		t.Fatalf("AvgScore() error = %v", err)
	}
	if avg != 0 {
		t.Errorf("AvgScore() = %v, want 0 with no tasks", avg)
	}

	avg, err = store.AvgTokens()
	if err != nil {
		t.Fatalf("AvgTokens() error = %v", err)
	}
	if avg != 0 {
		t.Errorf("AvgTokens() = %v, want 0 with no tasks", avg)
	}
}
