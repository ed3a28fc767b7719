// ABOUTME: Remember command inserts a raw memory with deferred embedding
// ABOUTME: The hot-path insert used by hooks; embed-pending fills vectors later
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/memelord/internal/models"
)

var (
	rememberCategory string
	rememberWeight   float64
)

// NewRememberCmd creates the remember command
func NewRememberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remember <content>",
		Short: "Store a raw memory without embedding it",
		Long: `Store a raw memory without embedding it.

The memory stays invisible to retrieval until the next embed-pending
pass (which also runs automatically at every task start).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.InsertRawMemory(strings.Join(args, " "), rememberCategory, rememberWeight)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (embedding pending)\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rememberCategory, "category", string(models.CategoryInsight),
		"Memory category: correction, insight, user, consolidated, or discovery")
	cmd.Flags().Float64Var(&rememberWeight, "weight", 1.0, "Initial weight")

	return cmd
}
