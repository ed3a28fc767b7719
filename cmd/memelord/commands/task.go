// ABOUTME: Task commands: start a task with retrieval, end it with counters
// ABOUTME: The self-report flag rates retrieved memories as id=rating pairs
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/memelord/internal/models"
)

var (
	endTokensUsed      int64
	endToolCalls       int64
	endErrors          int64
	endUserCorrections int64
	endCompleted       bool
	endRatings         []string
	endSkipDecay       bool
)

// NewTaskCmd creates the task command group
func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Start and end tasks",
	}
	cmd.AddCommand(newTaskStartCmd())
	cmd.AddCommand(newTaskEndCmd())
	return cmd
}

func newTaskStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <description>",
		Short: "Start a task and retrieve relevant memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			description := strings.Join(args, " ")
			taskID, memories, err := store.StartTask(cmd.Context(), description)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task: %s\n", taskID)
			if len(memories) == 0 {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "No relevant memories yet.")
				}
				return nil
			}
			for _, m := range memories {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%.2f] %s  %s\n", m.Score, m.ID, truncate(m.Content, 70))
			}
			return nil
		},
	}
}

func newTaskEndCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end <task-id>",
		Short: "End a task with its outcome counters",
		Long: `End a task with its outcome counters.

Rate retrieved memories with repeated --rate memory-id=N flags, where N
is 0 (useless) to 3 (essential). A decay pass runs afterwards unless
--skip-decay is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selfReports, err := parseRatings(endRatings)
			if err != nil {
				return err
			}

			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			outcome := models.TaskOutcome{
				TokensUsed:      endTokensUsed,
				ToolCalls:       endToolCalls,
				Errors:          endErrors,
				UserCorrections: endUserCorrections,
				Completed:       endCompleted,
			}
			if err := store.EndTask(args[0], outcome, selfReports); err != nil {
				return err
			}

			if !endSkipDecay {
				result, err := store.Decay()
				if err != nil {
					return err
				}
				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "Decayed %d memories, deleted %d\n", result.Decayed, result.Deleted)
				}
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s ended\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&endTokensUsed, "tokens", 0, "Tokens used during the task")
	cmd.Flags().Int64Var(&endToolCalls, "tool-calls", 0, "Tool calls made during the task")
	cmd.Flags().Int64Var(&endErrors, "errors", 0, "Errors hit during the task")
	cmd.Flags().Int64Var(&endUserCorrections, "user-corrections", 0, "Times the user corrected course")
	cmd.Flags().BoolVar(&endCompleted, "completed", false, "Whether the task finished successfully")
	cmd.Flags().StringArrayVar(&endRatings, "rate", nil, "Rate a retrieved memory: memory-id=0..3 (repeatable)")
	cmd.Flags().BoolVar(&endSkipDecay, "skip-decay", false, "Skip the decay pass after ending")

	return cmd
}

// parseRatings converts id=rating flags into self reports
func parseRatings(ratings []string) ([]models.SelfReport, error) {
	var reports []models.SelfReport
	for _, r := range ratings {
		id, value, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --rate %q, want memory-id=0..3", r)
		}
		rating, err := strconv.Atoi(value)
		if err != nil || rating < 0 || rating > 3 {
			return nil, fmt.Errorf("invalid rating in --rate %q, want 0..3", r)
		}
		reports = append(reports, models.SelfReport{MemoryID: id, Rating: rating})
	}
	return reports, nil
}
