// ABOUTME: Init command creates the per-project data directory and database
// ABOUTME: Idempotent; safe to run in an already-initialized project
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the memory store for this project",
		Long: `Initialize the memory store for this project.

Creates the data directory (default .memelord/, override with
MEMELORD_DIR) and the database schema. Running it again is harmless.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Memory store ready at %s\n", cfg.DBPath())
			}
			return nil
		},
	}
}
