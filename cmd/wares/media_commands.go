package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wares/internal/draftstore"
	"wares/internal/media"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Stage and remove product media",
	}

	mediaCmd.AddCommand(newMediaBrochureCommand(ctx))
	mediaCmd.AddCommand(newMediaImageCommand(ctx))
	mediaCmd.AddCommand(newMediaVideoCommand(ctx))
	mediaCmd.AddCommand(newMediaRemoveCommand(ctx))

	return mediaCmd
}

func saveDraftMedia(ctx *commandContext, cmd *cobra.Command, store *draftstore.Store, draft *draftstore.Draft, channels *media.Channels) error {
	draft.Apply(draft.Record(), draft.AttributeStore(), channels)
	_, err := store.Update(cmd.Context(), draft)
	return err
}

func newMediaBrochureCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "brochure <id> <file>",
		Short: "Stage a brochure document",
		Long: `Stage a brochure document for upload on the next publish. A draft
carries at most one brochure; staging a new file replaces any previously
staged one. A brochure already on the listing is only replaced after the
staged file uploads successfully.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				path, size, mediaType, err := statUpload(args[1])
				if err != nil {
					return err
				}
				channels := draft.MediaChannels(ctx.ensureLogger())
				if err := channels.StageBrochure(path, size, mediaType); err != nil {
					return err
				}
				if err := saveDraftMedia(ctx, cmd, store, draft, channels); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Staged brochure %s\n", path)
				return nil
			})
		},
	}
}

func newMediaImageCommand(ctx *commandContext) *cobra.Command {
	var primary bool

	cmd := &cobra.Command{
		Use:   "image <id> <file>...",
		Short: "Stage one or more gallery images",
		Long: `Stage image files for upload on the next publish. Images must be
between 50 KiB and 1 MiB and carry an image media type. With --primary the
first file becomes the primary image candidate, shown as the listing's
cover once uploaded.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				channels := draft.MediaChannels(ctx.ensureLogger())
				for i, file := range args[1:] {
					path, size, mediaType, err := statUpload(file)
					if err != nil {
						return err
					}
					if primary && i == 0 {
						if err := channels.StagePrimaryImage(path, size, mediaType); err != nil {
							return fmt.Errorf("%s: %w", file, err)
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Staged primary image %s\n", path)
						continue
					}
					staged, err := channels.StageGalleryImage(path, size, mediaType)
					if err != nil {
						return fmt.Errorf("%s: %w", file, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Staged image %s (%s)\n", path, staged.Handle)
				}
				return saveDraftMedia(ctx, cmd, store, draft, channels)
			})
		},
	}

	cmd.Flags().BoolVar(&primary, "primary", false, "Stage the first file as the primary image")
	return cmd
}

func newMediaVideoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "video <id> <url>",
		Short: "Stage an external video link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				channels := draft.MediaChannels(ctx.ensureLogger())
				if err := channels.StageVideoLink(args[1]); err != nil {
					return err
				}
				if err := saveDraftMedia(ctx, cmd, store, draft, channels); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Staged video link %s\n", strings.TrimSpace(args[1]))
				return nil
			})
		},
	}
}

func newMediaRemoveCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id> <handle|media-id|url>",
		Short: "Remove staged or persisted media",
		Long: `Remove a media entry from a draft. Staged files are addressed by
their handle and staged video links by their URL; both are dropped locally
without confirmation. Persisted media is addressed by its numeric server id
and requires --yes: the entry is deleted on the marketplace first and only
dropped from the draft once the server confirms.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				channels := draft.MediaChannels(ctx.ensureLogger())
				target := strings.TrimSpace(args[1])

				if mediaID, err := strconv.ParseInt(target, 10, 64); err == nil {
					return removePersistedMedia(ctx, cmd, store, draft, channels, mediaID, yes)
				}

				if channels.DiscardStaged(target) || channels.DiscardVideoLink(target) {
					if err := saveDraftMedia(ctx, cmd, store, draft, channels); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed staged %s\n", target)
					return nil
				}
				return fmt.Errorf("no staged media matches %q", target)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion of persisted media")
	return cmd
}

func removePersistedMedia(ctx *commandContext, cmd *cobra.Command, store *draftstore.Store, draft *draftstore.Draft, channels *media.Channels, mediaID int64, confirmed bool) error {
	if draft.ProductID == 0 {
		return fmt.Errorf("draft %d has no published listing to delete media from", draft.ID)
	}
	if !confirmed {
		return fmt.Errorf("deleting media %d from listing #%d requires --yes", mediaID, draft.ProductID)
	}
	client, err := ctx.marketClient()
	if err != nil {
		return err
	}
	if err := client.DeleteMedia(cmd.Context(), draft.ProductID, []int64{mediaID}); err != nil {
		return err
	}
	if !channels.RemovePersisted(mediaID) {
		fmt.Fprintf(cmd.OutOrStdout(), "Media %d deleted on the server but was not tracked locally\n", mediaID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted media %d from listing #%d\n", mediaID, draft.ProductID)
	}
	return saveDraftMedia(ctx, cmd, store, draft, channels)
}
