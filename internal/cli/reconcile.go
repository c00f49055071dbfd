package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/wire"
)

// ReconcileCmd returns the reconcile command
func ReconcileCmd() *cobra.Command {
	var kill bool
	var silent bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Find sessions belonging to this project's port block",
		Long: `Enumerate live tmux sessions and match them to this project by the
port embedded in each session name. Sessions in other projects' blocks are
never touched, even when the names collide. With --kill the matched
sessions are terminated; without it they are only reported.

Run this after a crash to sweep orphaned sessions before trusting the
store again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := primary.ReconcileOptions{Kill: kill, Silent: silent}
			report, err := wire.ReconcileService().Reconcile(context.Background(), opts)
			if err != nil {
				return fmt.Errorf("failed to reconcile: %w", err)
			}

			for _, marker := range wire.ReconcileService().LegacyMarkers() {
				color.New(color.FgYellow).Printf("! Legacy marker file %s (remove by hand)\n", marker)
			}

			if len(report.Matched) == 0 {
				fmt.Println("No sessions belong to this project.")
				return nil
			}
			for _, name := range report.Matched {
				fmt.Printf("  %s\n", name)
			}
			if kill {
				fmt.Printf("✓ Killed %d of %d sessions\n", len(report.Killed), len(report.Matched))
				for _, name := range report.Failed {
					color.New(color.FgRed).Printf("✗ Failed to kill %s\n", name)
				}
			} else {
				fmt.Printf("%d sessions matched; rerun with --kill to terminate them\n", len(report.Matched))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&kill, "kill", false, "Terminate matched sessions")
	cmd.Flags().BoolVar(&silent, "silent", false, "Suppress informational logging")
	return cmd
}
