// ABOUTME: MemoryRetrieval links a memory to a task it was surfaced for
// ABOUTME: One row per (memory, task) pair; rating and credit arrive at EndTask
package models

// MemoryRetrieval records that a memory was returned for a task. Rated is
// false until EndTask writes a self-report for the pair.
type MemoryRetrieval struct {
	MemoryID   string  `json:"memory_id"`
	TaskID     string  `json:"task_id"`
	Similarity float64 `json:"similarity"`
	SelfReport int     `json:"self_report"`
	Credit     float64 `json:"credit"`
	Rated      bool    `json:"rated"`
}

// Stats summarizes the state of a project's memory store
type Stats struct {
	TotalMemories int64             `json:"total_memories"`
	TaskCount     int64             `json:"task_count"`
	AvgTaskScore  float64           `json:"avg_task_score"`
	TopMemories   []RetrievedMemory `json:"top_memories"`
}
