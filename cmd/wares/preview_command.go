package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wares/internal/draftstore"
	"wares/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <id>",
		Short: "Show how a draft will appear on the marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				p := preview.Compute(draft.Manufacturer, draft.Name, draft.Model)
				fmt.Fprintf(cmd.OutOrStdout(), "Title: %s\n", p.Title)
				fmt.Fprintf(cmd.OutOrStdout(), "Path:  %s\n", p.Path)
				return nil
			})
		},
	}
}
