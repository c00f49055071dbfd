package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/af/internal/core/builder"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/wire"
)

// BuilderCmd returns the builder command
func BuilderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Manage builder lifecycle",
	}

	cmd.AddCommand(builderListCmd())
	cmd.AddCommand(builderShowCmd())
	cmd.AddCommand(builderSetStatusCmd())
	cmd.AddCommand(builderSetPhaseCmd())
	cmd.AddCommand(builderCleanupCmd())

	return cmd
}

func builderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all builders",
		RunE: func(cmd *cobra.Command, args []string) error {
			builders, err := wire.BuilderService().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list builders: %w", err)
			}
			if len(builders) == 0 {
				fmt.Println("No builders.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tKIND\tSTATUS\tPHASE\tPORT")
			for _, b := range builders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", b.ID, b.Name, b.Kind, statusColor(b.Status), b.Phase, b.Port)
			}
			return w.Flush()
		},
	}
}

func builderShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one builder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := wire.BuilderService().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get builder: %w", err)
			}
			fmt.Printf("ID:        %s\n", b.ID)
			fmt.Printf("Name:      %s\n", b.Name)
			fmt.Printf("Kind:      %s\n", b.Kind)
			fmt.Printf("Status:    %s\n", statusColor(b.Status))
			fmt.Printf("Phase:     %s\n", b.Phase)
			fmt.Printf("Port:      %d\n", b.Port)
			fmt.Printf("Pid:       %d\n", b.Pid)
			fmt.Printf("Session:   %s\n", b.Session)
			if b.WorkspacePath != "" {
				fmt.Printf("Workspace: %s\n", b.WorkspacePath)
				fmt.Printf("Branch:    %s\n", b.Branch)
			}
			if b.Task != "" {
				fmt.Printf("Task:      %s\n", b.Task)
			}
			if b.Protocol != "" {
				fmt.Printf("Protocol:  %s\n", b.Protocol)
			}
			fmt.Printf("Created:   %s\n", b.CreatedAt)
			fmt.Printf("Updated:   %s\n", b.UpdatedAt)
			return nil
		},
	}
}

func builderSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Move a builder to a new lifecycle status",
		Long: `Move a builder along its lifecycle. Declared transitions:
spawning -> implementing, implementing <-> blocked,
implementing -> pr-ready, pr-ready -> complete.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.BuilderService().SetStatus(context.Background(), args[0], builder.Status(args[1])); err != nil {
				return fmt.Errorf("failed to set status: %w", err)
			}
			fmt.Printf("✓ %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func builderSetPhaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-phase <id> <phase>",
		Short: "Set a builder's informational phase label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.BuilderService().SetPhase(context.Background(), args[0], args[1]); err != nil {
				return fmt.Errorf("failed to set phase: %w", err)
			}
			fmt.Printf("✓ %s phase: %s\n", args[0], args[1])
			return nil
		},
	}
}

func builderCleanupCmd() *cobra.Command {
	var removeWorkspace bool
	var force bool

	cmd := &cobra.Command{
		Use:   "cleanup <id>",
		Short: "Tear down a builder from any status",
		Long: `Kill the builder's session and delete its record, freeing the port.
With --remove-workspace the worktree is removed too; this refuses when
the worktree has uncommitted changes unless --force is given. The branch
and its history are always preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := primary.CleanupOptions{RemoveWorkspace: removeWorkspace, Force: force}
			if err := wire.BuilderService().Cleanup(context.Background(), args[0], opts); err != nil {
				return fmt.Errorf("failed to clean up builder: %w", err)
			}
			fmt.Printf("✓ Cleaned up %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&removeWorkspace, "remove-workspace", false, "Also remove the worktree")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove the worktree even with uncommitted changes")
	return cmd
}
