package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/af/internal/wire"
)

// PortsCmd returns the ports command
func PortsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Manage the machine-wide port registry",
	}

	cmd.AddCommand(portsListCmd())
	cmd.AddCommand(portsCleanupCmd())

	return cmd
}

func portsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every project's port block",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := wire.PortService().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list allocations: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No allocations.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BASE\tPID\tLAST USED\tPROJECT")
			for _, rec := range records {
				pid := "-"
				if rec.Pid != 0 {
					pid = fmt.Sprintf("%d", rec.Pid)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", rec.BasePort, pid, rec.LastUsedAt, rec.ProjectPath)
			}
			return w.Flush()
		},
	}
}

func portsCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Garbage-collect stale registry rows",
		Long: `Delete allocations whose project directory no longer exists and clear
owner pids that are no longer running. A cleared pid keeps its allocation,
so the project gets the same block back on its next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := wire.PortService().CleanupStale(context.Background())
			if err != nil {
				return fmt.Errorf("failed to clean up registry: %w", err)
			}
			for _, p := range report.Removed {
				fmt.Printf("✓ Removed allocation for vanished project %s\n", p)
			}
			for _, p := range report.PidsCleared {
				fmt.Printf("✓ Cleared dead pid for %s\n", p)
			}
			for _, p := range report.Skipped {
				color.New(color.FgYellow).Printf("! Skipped %s\n", p)
			}
			if len(report.Removed)+len(report.PidsCleared)+len(report.Skipped) == 0 {
				fmt.Println("Registry is clean.")
			}
			return nil
		},
	}
}
