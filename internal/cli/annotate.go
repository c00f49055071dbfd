package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/af/internal/core/annotation"
	"github.com/example/af/internal/wire"
)

// AnnotateCmd returns the annotate command
func AnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Manage annotation viewers",
	}

	cmd.AddCommand(annotateOpenCmd())
	cmd.AddCommand(annotateCloseCmd())
	cmd.AddCommand(annotateListCmd())

	return cmd
}

func annotateOpenCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Open an annotation viewer for a file",
		Long: `Open an annotation viewer on an annotation-range port, grouped under a
parent for display. The parent is "architect", "builder:<id>", or
"util:<id>"; builder and util parents must exist in the store. The
grouping is non-owning: closing the parent leaves the viewer running.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := annotation.ParseParentRef(parent)
			if err != nil {
				return err
			}
			rec, err := wire.AnnotationService().Open(context.Background(), args[0], ref)
			if err != nil {
				return fmt.Errorf("failed to open annotation viewer: %w", err)
			}
			fmt.Printf("✓ Opened %s for %s on port %d (session %s)\n", rec.ID, rec.File, rec.Port, rec.Session)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "architect", `Parent reference: architect, builder:<id>, or util:<id>`)
	return cmd
}

func annotateCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Close an annotation viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.AnnotationService().Close(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to close annotation viewer: %w", err)
			}
			fmt.Printf("✓ Closed %s\n", args[0])
			return nil
		},
	}
}

func annotateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List annotation viewers",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := wire.AnnotationService().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list annotation viewers: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No annotation viewers.")
				return nil
			}
			for _, rec := range records {
				parent := rec.ParentKind
				if rec.ParentID != "" {
					parent = fmt.Sprintf("%s:%s", rec.ParentKind, rec.ParentID)
				}
				fmt.Printf("%s  %s  port %d  under %s\n", rec.ID, rec.File, rec.Port, parent)
			}
			return nil
		},
	}
}
