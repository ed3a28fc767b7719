// ABOUTME: Report commands store corrections, user input, and insights
// ABOUTME: Corrections carry failed/working approaches and wasted tokens
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/memelord/internal/core"
	"github.com/2389-research/memelord/internal/models"
	"github.com/2389-research/memelord/internal/scoring"
)

var (
	reportWhatFailed   string
	reportWhatWorked   string
	reportTokensWasted int64
	reportSource       string
)

// NewReportCmd creates the report command group
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Store a correction, user input, or insight",
	}
	cmd.AddCommand(newReportCorrectionCmd())
	cmd.AddCommand(newReportUserCmd())
	cmd.AddCommand(newReportInsightCmd())
	return cmd
}

func newReportCorrectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correction <lesson>",
		Short: "Store a correction: what failed and what worked",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.ReportCorrection(cmd.Context(), core.CorrectionReport{
				Lesson:       strings.Join(args, " "),
				WhatFailed:   reportWhatFailed,
				WhatWorked:   reportWhatWorked,
				TokensWasted: reportTokensWasted,
			})
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Stored correction %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportWhatFailed, "failed", "", "The approach that failed")
	cmd.Flags().StringVar(&reportWhatWorked, "worked", "", "The approach that worked")
	cmd.Flags().Int64Var(&reportTokensWasted, "tokens-wasted", 0, "Tokens wasted before finding the working approach")

	return cmd
}

func newReportUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user <lesson>",
		Short: "Store something the user said",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.ReportUserInput(cmd.Context(), strings.Join(args, " "), reportSource)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Stored user memory %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportSource, "source", scoring.SourceUserInput,
		"How the input arrived: user_denial, user_correction, or user_input")

	return cmd
}

func newReportInsightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insight <lesson>",
		Short: "Store a general insight",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := buildStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.InsertRawMemory(strings.Join(args, " "), string(models.CategoryInsight), 1.0)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Stored insight %s (embedding pending)\n", id)
			}
			return nil
		},
	}
}
