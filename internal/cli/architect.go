package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/wire"
)

// ArchitectCmd returns the architect command
func ArchitectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "architect",
		Short: "Manage the project's architect",
	}

	cmd.AddCommand(architectStartCmd())
	cmd.AddCommand(architectStopCmd())
	cmd.AddCommand(architectShowCmd())

	return cmd
}

func architectStartCmd() *cobra.Command {
	var command string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the architect session",
		Long: `Start the architect agent on this project's architect port (base+1).
A crash leftover, meaning the recorded pid is dead or the session is gone,
is replaced; a live architect is a conflict.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := wire.ArchitectService().Start(context.Background(), primary.StartArchitectRequest{Command: command})
			if err != nil {
				return fmt.Errorf("failed to start architect: %w", err)
			}
			fmt.Printf("✓ Architect running in %s (pid %d, port %d)\n", rec.Session, rec.Pid, rec.Port)
			return nil
		},
	}
	cmd.Flags().StringVarP(&command, "command", "c", "", "Agent command (defaults to the configured one)")
	return cmd
}

func architectStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the architect session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.ArchitectService().Stop(context.Background()); err != nil {
				return fmt.Errorf("failed to stop architect: %w", err)
			}
			fmt.Println("✓ Architect stopped")
			return nil
		},
	}
}

func architectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the recorded architect",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := wire.ArchitectService().Get(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get architect: %w", err)
			}
			fmt.Printf("Session: %s\n", rec.Session)
			fmt.Printf("Pid:     %d\n", rec.Pid)
			fmt.Printf("Port:    %d\n", rec.Port)
			fmt.Printf("Command: %s\n", rec.Command)
			fmt.Printf("Started: %s\n", rec.StartedAt)
			return nil
		},
	}
}
