// ABOUTME: Top command lists the highest-weighted memories
// ABOUTME: Pure weight ranking; no embedding or query text involved
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topCount int

// NewTopCmd creates the top command
func NewTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most useful memories by weight",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			memories, err := store.TopByWeight(topCount)
			if err != nil {
				return err
			}

			if len(memories) == 0 {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "No memories stored yet.")
				}
				return nil
			}

			for _, m := range memories {
				fmt.Fprintf(cmd.OutOrStdout(), "[%.2f] %-12s %s\n", m.Weight, m.Category, truncate(m.Content, 60))
				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "       id=%s retrieved=%d last=%s\n", m.ID, m.RetrievalCount, formatUnix(m.LastRetrieved))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topCount, "count", "n", 10, "How many memories to list")

	return cmd
}
