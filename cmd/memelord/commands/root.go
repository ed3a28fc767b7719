// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for all memelord CLI operations
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

const banner = `
███╗   ███╗███████╗███╗   ███╗███████╗██╗      ██████╗ ██████╗ ██████╗
████╗ ████║██╔════╝████╗ ████║██╔════╝██║     ██╔═══██╗██╔══██╗██╔══██╗
██╔████╔██║█████╗  ██╔████╔██║█████╗  ██║     ██║   ██║██████╔╝██║  ██║
██║╚██╔╝██║██╔══╝  ██║╚██╔╝██║██╔══╝  ██║     ██║   ██║██╔══██╗██║  ██║
██║ ╚═╝ ██║███████╗██║ ╚═╝ ██║███████╗███████╗╚██████╔╝██║  ██║██████╔╝
╚═╝     ╚═╝╚══════╝╚═╝     ╚═╝╚══════╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═════╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memelord",
		Short: "Per-project persistent memory for coding agents",
		Long: banner + `
memelord keeps a per-project store of lessons, corrections, and
discoveries across agent sessions. It retrieves the memories most likely
to help with the current task and keeps revising their usefulness from
task outcomes.

Data lives under .memelord/ in the project root (override with
MEMELORD_DIR).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewTaskCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewRememberCmd())
	cmd.AddCommand(NewTopCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewEmbedPendingCmd())
	cmd.AddCommand(NewContradictCmd())
	cmd.AddCommand(NewPenalizeCmd())
	cmd.AddCommand(NewDecayCmd())
	cmd.AddCommand(NewPurgeCmd())
	cmd.AddCommand(NewHookCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
