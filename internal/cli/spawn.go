package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/af/internal/core/builder"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/wire"
)

// SpawnCmd returns the spawn command
func SpawnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spawn",
		Short: "Spawn a new builder",
		Long: `Spawn a builder: reserve a port, create an isolated worktree and
branch where the kind calls for one, and start its tmux session.

Examples:
  af spawn spec 12                 # builder for specification 12
  af spawn task "fix the linter"   # ad-hoc task builder
  af spawn protocol release        # protocol builder
  af spawn shell                   # bare agent shell, no worktree
  af spawn worktree                # bare worktree, no agent`,
	}

	cmd.AddCommand(spawnSpecCmd())
	cmd.AddCommand(spawnTaskCmd())
	cmd.AddCommand(spawnProtocolCmd())
	cmd.AddCommand(spawnBareCmd(builder.KindShell, "Spawn a bare agent shell without a worktree"))
	cmd.AddCommand(spawnBareCmd(builder.KindWorktree, "Spawn a bare worktree without an agent"))

	return cmd
}

func spawnSpecCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "spec <number>",
		Short: "Spawn a builder for a numbered specification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("spec number must be an integer, got %q", args[0])
			}
			return runSpawn(primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: n, Name: name})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the builder id)")
	return cmd
}

func spawnTaskCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "task <description>",
		Short: "Spawn a builder for an ad-hoc task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpawn(primary.SpawnRequest{Kind: builder.KindTask, Task: args[0], Name: name})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the builder id)")
	return cmd
}

func spawnProtocolCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "protocol <name>",
		Short: "Spawn a builder running a named protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpawn(primary.SpawnRequest{Kind: builder.KindProtocol, Protocol: args[0], Name: name})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the builder id)")
	return cmd
}

func spawnBareCmd(kind builder.Kind, short string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpawn(primary.SpawnRequest{Kind: kind, Name: name})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the builder id)")
	return cmd
}

func runSpawn(req primary.SpawnRequest) error {
	resp, err := wire.BuilderService().Spawn(context.Background(), req)
	if err != nil {
		return fmt.Errorf("failed to spawn builder: %w", err)
	}
	b := resp.Builder
	fmt.Printf("✓ Spawned %s on port %d (session %s)\n", b.ID, b.Port, b.Session)
	if b.WorkspacePath != "" {
		fmt.Printf("  Workspace: %s (branch %s)\n", b.WorkspacePath, b.Branch)
	}
	return nil
}
