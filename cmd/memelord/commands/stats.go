// ABOUTME: Stats command summarizes the memory store
// ABOUTME: Totals, average task score, and the top memories by weight
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show memory store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Memories:       %d\n", stats.TotalMemories)
			fmt.Fprintf(out, "Tasks:          %d\n", stats.TaskCount)
			fmt.Fprintf(out, "Avg task score: %.2f\n", stats.AvgTaskScore)

			if len(stats.TopMemories) > 0 {
				fmt.Fprintln(out, "\nTop memories:")
				for _, m := range stats.TopMemories {
					fmt.Fprintf(out, "  [%.2f] %-12s %s\n", m.Weight, m.Category, truncate(m.Content, 55))
				}
			}
			return nil
		},
	}
}
