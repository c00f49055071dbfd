package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/af/internal/wire"
)

// UtilCmd returns the util command
func UtilCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "util",
		Short: "Manage utility terminals",
	}

	cmd.AddCommand(utilOpenCmd())
	cmd.AddCommand(utilCloseCmd())
	cmd.AddCommand(utilListCmd())

	return cmd
}

func utilOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open a utility terminal on a util-range port",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := wire.UtilService().Open(context.Background())
			if err != nil {
				return fmt.Errorf("failed to open util terminal: %w", err)
			}
			fmt.Printf("✓ Opened %s on port %d (session %s)\n", rec.ID, rec.Port, rec.Session)
			return nil
		},
	}
}

func utilCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Close a utility terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.UtilService().Close(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to close util terminal: %w", err)
			}
			fmt.Printf("✓ Closed %s\n", args[0])
			return nil
		},
	}
}

func utilListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List utility terminals",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := wire.UtilService().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list util terminals: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No utility terminals.")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%s  port %d  %s\n", rec.ID, rec.Port, rec.Session)
			}
			return nil
		},
	}
}
