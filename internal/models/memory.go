// ABOUTME: Memory domain model and the closed category enum
// ABOUTME: A memory is a weighted, embedded text remembered across agent sessions
package models

import "fmt"

// Category classifies how a memory came to exist
type Category string

// The closed set of memory categories
const (
	CategoryCorrection   Category = "correction"
	CategoryInsight      Category = "insight"
	CategoryUser         Category = "user"
	CategoryConsolidated Category = "consolidated"
	CategoryDiscovery    Category = "discovery"
)

// ParseCategory validates a raw category string against the closed set
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryCorrection, CategoryInsight, CategoryUser, CategoryConsolidated, CategoryDiscovery:
		return c, nil
	}
	return "", fmt.Errorf("unknown memory category: %q", s)
}

// Memory is the atomic unit of recall. A nil Embedding means the vector is
// still pending; pending memories are excluded from retrieval.
type Memory struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Embedding      []float32 `json:"-"`
	Category       Category  `json:"category"`
	Weight         float64   `json:"weight"`
	InitialCost    int64     `json:"initial_cost"`
	CreatedAt      int64     `json:"created_at"`
	LastRetrieved  int64     `json:"last_retrieved,omitempty"`
	RetrievalCount int64     `json:"retrieval_count"`
	SourceTask     string    `json:"source_task,omitempty"`
}

// RetrievedMemory pairs a memory with the score that surfaced it: cosine
// similarity in StartTask results, stored weight in TopByWeight results.
type RetrievedMemory struct {
	Memory
	Score float64 `json:"score"`
}

// ContradictResult reports the outcome of contradicting a memory
type ContradictResult struct {
	Deleted      bool   `json:"deleted"`
	CorrectionID string `json:"correction_id,omitempty"`
}

// DecayResult reports one decay pass: how many weights were multiplied down
// and how many worn-out memories were removed
type DecayResult struct {
	Decayed int64 `json:"decayed"`
	Deleted int64 `json:"deleted"`
}
