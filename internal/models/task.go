// ABOUTME: Task domain model and end-of-task reporting types
// ABOUTME: A task is one bounded piece of work between StartTask and EndTask
package models

// Task records one bounded piece of agent work. FinishedAt == 0 means the
// task is still active; TaskScore is only meaningful once finished.
type Task struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Description     string    `json:"description"`
	Embedding       []float32 `json:"-"`
	TokensUsed      int64     `json:"tokens_used"`
	ToolCalls       int64     `json:"tool_calls"`
	Errors          int64     `json:"errors"`
	UserCorrections int64     `json:"user_corrections"`
	Completed       bool      `json:"completed"`
	TaskScore       float64   `json:"task_score"`
	StartedAt       int64     `json:"started_at"`
	FinishedAt      int64     `json:"finished_at,omitempty"`
}

// TaskOutcome carries the counters reported when a task ends
type TaskOutcome struct {
	TokensUsed      int64 `json:"tokens_used"`
	ToolCalls       int64 `json:"tool_calls"`
	Errors          int64 `json:"errors"`
	UserCorrections int64 `json:"user_corrections"`
	Completed       bool  `json:"completed"`
}

// SelfReport rates how useful one retrieved memory was for a task, 0-3
type SelfReport struct {
	MemoryID string `json:"memory_id"`
	Rating   int    `json:"rating"`
}
