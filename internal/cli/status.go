// Package cli provides the CLI commands for the af application.
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

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show everything recorded for this project",
		Long: `Display the full store snapshot for the current project:
the architect, all builders with their lifecycle status, utility
terminals, and annotation viewers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			snap, err := wire.StatusService().Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("failed to load snapshot: %w", err)
			}

			bold := color.New(color.Bold)
			bold.Printf("Project: %s\n\n", wire.ProjectPath())

			if snap.Architect != nil {
				fmt.Printf("Architect: %s (pid %d, port %d)\n",
					snap.Architect.Session, snap.Architect.Pid, snap.Architect.Port)
			} else {
				fmt.Println("Architect: not running")
			}
			fmt.Println()

			bold.Printf("Builders (%d)\n", len(snap.Builders))
			if len(snap.Builders) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tKIND\tSTATUS\tPHASE\tPORT\tSESSION")
				for _, b := range snap.Builders {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
						b.ID, b.Name, b.Kind, statusColor(b.Status), b.Phase, b.Port, b.Session)
				}
				w.Flush()
			}
			fmt.Println()

			bold.Printf("Utils (%d)\n", len(snap.Utils))
			for _, u := range snap.Utils {
				fmt.Printf("  %s  port %d  %s\n", u.ID, u.Port, u.Session)
			}

			bold.Printf("Annotations (%d)\n", len(snap.Annotations))
			for _, a := range snap.Annotations {
				parent := a.ParentKind
				if a.ParentID != "" {
					parent = fmt.Sprintf("%s:%s", a.ParentKind, a.ParentID)
				}
				fmt.Printf("  %s  %s  port %d  under %s\n", a.ID, a.File, a.Port, parent)
			}
			return nil
		},
	}
}

func statusColor(status string) string {
	switch status {
	case "spawning":
		return color.New(color.FgYellow).Sprint(status)
	case "implementing":
		return color.New(color.FgCyan).Sprint(status)
	case "blocked":
		return color.New(color.FgRed).Sprint(status)
	case "pr-ready":
		return color.New(color.FgHiMagenta).Sprint(status)
	case "complete":
		return color.New(color.FgGreen).Sprint(status)
	}
	return status
}
