// ABOUTME: Per-session collaborator files: session JSON and failures JSONL
// ABOUTME: Written by lifecycle hooks and drained at session end
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Session records what the SessionStart hook injected, so SessionEnd can
// revisit those memories.
type Session struct {
	SessionID         string   `json:"session_id"`
	Cwd               string   `json:"cwd"`
	StartedAt         int64    `json:"started_at"`
	InjectedMemoryIDs []string `json:"injected_memory_ids"`
}

// Failure is one tool failure observed mid-session, appended to the
// failures JSONL by the PostToolUse hook. The hot path never touches the
// database; failures wait here until session end.
type Failure struct {
	Timestamp    int64  `json:"timestamp"`
	ToolName     string `json:"tool_name"`
	ToolInput    string `json:"tool_input"`
	ErrorSummary string `json:"error_summary"`
}

// Files locates the two per-session files under the sessions directory
type Files struct {
	dir       string
	sessionID string
}

// NewFiles creates a Files for sessionID under dir
func NewFiles(dir, sessionID string) *Files {
	return &Files{dir: dir, sessionID: sessionID}
}

// SessionPath returns the session JSON path
func (f *Files) SessionPath() string {
	return filepath.Join(f.dir, f.sessionID+".json")
}

// FailuresPath returns the failures JSONL path
func (f *Files) FailuresPath() string {
	return filepath.Join(f.dir, f.sessionID+".failures.jsonl")
}

// WriteSession persists the session record, creating the directory if
// needed
func (f *Files) WriteSession(s *Session) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(f.SessionPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// ReadSession loads the session record, or nil if none was written
func (f *Files) ReadSession() (*Session, error) {
	data, err := os.ReadFile(f.SessionPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return &s, nil
}

// AppendFailure appends one failure record to the JSONL log
func (f *Files) AppendFailure(failure *Failure) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	line, err := json.Marshal(failure)
	if err != nil {
		return fmt.Errorf("failed to encode failure: %w", err)
	}

	file, err := os.OpenFile(f.FailuresPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open failures file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append failure: %w", err)
	}
	return nil
}

// ReadFailures loads all recorded failures, skipping unparseable lines.
// Returns nil if no failures were recorded.
func (f *Files) ReadFailures() ([]Failure, error) {
	file, err := os.Open(f.FailuresPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open failures file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var failures []Failure
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var failure Failure
		if err := json.Unmarshal(line, &failure); err != nil {
			continue
		}
		failures = append(failures, failure)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan failures file: %w", err)
	}
	return failures, nil
}

// Remove deletes both session files. Missing files are fine; the hooks may
// never have written them.
func (f *Files) Remove() error {
	if err := os.Remove(f.SessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	if err := os.Remove(f.FailuresPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove failures file: %w", err)
	}
	return nil
}
