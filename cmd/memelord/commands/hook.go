// ABOUTME: Lifecycle hook commands driven by JSON events on stdin
// ABOUTME: Hooks log failures to stderr and always exit zero
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/session"
)

// Session-end penalty policy: when a session burned at least this many
// tokens, the memories injected at session start get nudged down.
const (
	penaltyTokenFloor = 20000
	penaltyFactor     = 0.999
)

var hookPenalize bool

// hookEvent is the host agent's lifecycle event, read from stdin. Unknown
// fields are ignored so hosts can evolve their payloads freely.
type hookEvent struct {
	SessionID    string          `json:"session_id"`
	Cwd          string          `json:"cwd"`
	ToolName     string          `json:"tool_name"`
	ToolInput    json.RawMessage `json:"tool_input"`
	ToolResponse json.RawMessage `json:"tool_response"`
	TotalTokens  int64           `json:"total_tokens"`
}

// NewHookCmd creates the hook command group
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Lifecycle hooks for host agent integration",
		Long: `Lifecycle hooks for host agent integration.

Each hook reads the host's JSON event from stdin. Hooks never fail the
host: any error is logged to stderr and the hook still exits zero.`,
	}
	cmd.AddCommand(newHookSessionStartCmd())
	cmd.AddCommand(newHookPostToolUseCmd())
	cmd.AddCommand(newHookSessionEndCmd())
	return cmd
}

func newHookSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session-start",
		Short: "Inject the top memories at session start",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runSessionStart(cmd); err != nil {
				log.Printf("session-start hook: %v", err)
			}
			return nil
		},
	}
}

func newHookPostToolUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post-tool-use",
		Short: "Record a tool failure for later learning",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runPostToolUse(cmd); err != nil {
				log.Printf("post-tool-use hook: %v", err)
			}
			return nil
		},
	}
}

func newHookSessionEndCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session-end",
		Short: "Drain session files into pending memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runSessionEnd(cmd); err != nil {
				log.Printf("session-end hook: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hookPenalize, "penalize", false,
		fmt.Sprintf("Multiply injected memories' weight by %.3f when the session spent >= %d tokens", penaltyFactor, penaltyTokenFloor))

	return cmd
}

// runSessionStart prints an injection block with the top memories by weight
// and records which ids were injected.
func runSessionStart(cmd *cobra.Command) error {
	event, err := readHookEvent(cmd.InOrStdin())
	if err != nil {
		return err
	}

	store, cfg, err := buildStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sessionID := event.SessionID
	if sessionID == "" {
		sessionID = cfg.SessionID
	}

	memories, err := store.TopByWeight(cfg.TopK)
	if err != nil {
		return err
	}

	injected := make([]string, 0, len(memories))
	if len(memories) > 0 {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Project memory (lessons from past sessions):")
		for _, m := range memories {
			fmt.Fprintf(out, "- %s\n", m.Content)
			injected = append(injected, m.ID)
		}
	}

	cwd := event.Cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	files := session.NewFiles(cfg.SessionsDir(), sessionID)
	return files.WriteSession(&session.Session{
		SessionID:         sessionID,
		Cwd:               cwd,
		StartedAt:         time.Now().Unix(),
		InjectedMemoryIDs: injected,
	})
}

// runPostToolUse appends a failure record when the tool result reports an
// error. This is the hot path: no database access, just a JSONL append.
func runPostToolUse(cmd *cobra.Command) error {
	event, err := readHookEvent(cmd.InOrStdin())
	if err != nil {
		return err
	}

	summary := errorSummary(event.ToolResponse)
	if summary == "" {
		return nil
	}

	cfg, err := loadHookConfig()
	if err != nil {
		return err
	}

	sessionID := event.SessionID
	if sessionID == "" {
		sessionID = cfg.SessionID
	}

	files := session.NewFiles(cfg.SessionsDir(), sessionID)
	return files.AppendFailure(&session.Failure{
		Timestamp:    time.Now().Unix(),
		ToolName:     event.ToolName,
		ToolInput:    compactJSON(event.ToolInput),
		ErrorSummary: summary,
	})
}

// runSessionEnd turns recorded failures into pending discovery memories,
// optionally penalizes the injected memories, and deletes the session files.
func runSessionEnd(cmd *cobra.Command) error {
	event, err := readHookEvent(cmd.InOrStdin())
	if err != nil {
		return err
	}

	store, cfg, err := buildStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sessionID := event.SessionID
	if sessionID == "" {
		sessionID = cfg.SessionID
	}
	files := session.NewFiles(cfg.SessionsDir(), sessionID)

	failures, err := files.ReadFailures()
	if err != nil {
		return err
	}
	for _, f := range failures {
		content := fmt.Sprintf("Tool %s failed: %s", f.ToolName, f.ErrorSummary)
		if f.ToolInput != "" {
			content += fmt.Sprintf(" (input: %s)", truncate(f.ToolInput, 200))
		}
		if _, err := store.InsertRawMemory(content, string(models.CategoryDiscovery), 1.0); err != nil {
			return err
		}
	}

	if hookPenalize && event.TotalTokens >= penaltyTokenFloor {
		record, err := files.ReadSession()
		if err != nil {
			return err
		}
		if record != nil {
			for _, id := range record.InjectedMemoryIDs {
				if err := store.PenalizeMemory(id, penaltyFactor); err != nil {
					return err
				}
			}
		}
	}

	return files.Remove()
}

// readHookEvent decodes the host event from stdin; empty input is a valid
// empty event
func readHookEvent(r io.Reader) (*hookEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading hook event: %w", err)
	}
	event := &hookEvent{}
	if len(data) == 0 {
		return event, nil
	}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decoding hook event: %w", err)
	}
	return event, nil
}

// errorSummary extracts an error message from a tool response, or "" when
// the tool succeeded
func errorSummary(response json.RawMessage) string {
	if len(response) == 0 {
		return ""
	}

	var payload struct {
		IsError bool   `json:"is_error"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(response, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.IsError {
		return "tool reported an error"
	}
	return ""
}

// compactJSON renders a raw JSON value as a single-line string
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
