// ABOUTME: Maintenance commands: embed-pending, contradict, penalize, decay, purge
// ABOUTME: Weight lifecycle operations that keep the store healthy over time
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	contradictCorrection string
	penalizeFactor       float64
)

// NewEmbedPendingCmd creates the embed-pending command
func NewEmbedPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed-pending",
		Short: "Embed memories stored without a vector",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			count, err := store.EmbedPending(cmd.Context())
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Embedded %d pending memories\n", count)
			}
			return nil
		},
	}
}

// NewContradictCmd creates the contradict command
func NewContradictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contradict <memory-id> [correction...]",
		Short: "Delete a wrong memory, optionally storing the correction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			correction := contradictCorrection
			if correction == "" && len(args) > 1 {
				correction = strings.Join(args[1:], " ")
			}

			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := store.ContradictMemory(cmd.Context(), args[0], correction)
			if err != nil {
				return err
			}

			if !result.Deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Memory %s not found\n", args[0])
				return nil
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				if result.CorrectionID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Stored correction %s\n", result.CorrectionID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contradictCorrection, "correction", "", "The corrected information to store instead")

	return cmd
}

// NewPenalizeCmd creates the penalize command
func NewPenalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "penalize <memory-id>",
		Short: "Multiply a memory's weight by a factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.PenalizeMemory(args[0], penalizeFactor); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Penalized %s by %.3f\n", args[0], penalizeFactor)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&penalizeFactor, "factor", 0.9, "Weight multiplier")

	return cmd
}

// NewDecayCmd creates the decay command
func NewDecayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decay",
		Short: "Apply one decay pass to all memory weights",
		Long: `Apply one decay pass to all memory weights.

Every weight is multiplied by the decay rate, then memories that have
sunk below the deletion threshold after enough retrievals are removed.
Memories that never got retrieved are kept regardless of weight.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := store.Decay()
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Decayed %d memories, deleted %d\n", result.Decayed, result.Deleted)
			}
			return nil
		},
	}
}

// NewPurgeCmd creates the purge command
func NewPurgeCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all memories below a weight threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			deleted, err := store.Purge(threshold)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d memories below %.2f\n", deleted, threshold)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.3, "Delete memories with weight below this")

	return cmd
}
