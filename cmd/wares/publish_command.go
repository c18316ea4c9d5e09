package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wares/internal/config"
	"wares/internal/draftstore"
	"wares/internal/notifications"
	"wares/internal/publish"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id>",
		Short: "Submit a draft to the marketplace",
		Long: `Submit a draft to the marketplace. The base record is saved first;
staged media then uploads channel by channel. A failure to save the base
record aborts the run, while a failed media channel leaves a partially
published listing that a later publish completes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.marketClient()
			if err != nil {
				return err
			}
			directory, err := ctx.ensureDirectory(cmd)
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}

				rec := draft.Record()
				if rec.OwnerID == "" {
					rec.OwnerID = cfg.Marketplace.OwnerID
				}
				attrs := draft.AttributeStore()
				channels := draft.MediaChannels(logger)

				orchestrator := publish.NewOrchestrator(client, directory, logger)
				outcome := orchestrator.Submit(cmd.Context(), rec, attrs, channels)

				draft.Apply(rec, attrs, channels)
				draft.LastOutcome = outcome.Summary()
				if _, err := store.Update(cmd.Context(), draft); err != nil {
					return fmt.Errorf("submission finished but saving the draft failed: %w", err)
				}

				printOutcome(cmd, outcome)
				notifyOutcome(cmd, cfg, draft, outcome)

				if outcome.Failed() {
					return fmt.Errorf("publish failed: %s", outcome.Summary())
				}
				return nil
			})
		},
	}
}

func printOutcome(cmd *cobra.Command, outcome publish.Outcome) {
	out := cmd.OutOrStdout()
	useColor := shouldColorize(out)

	for _, step := range outcome.Steps {
		switch {
		case step.Skipped:
			fmt.Fprintf(out, "  %-16s skipped\n", step.Step)
		case step.Err != nil:
			fmt.Fprintf(out, "  %-16s %s  %v\n", step.Step, colorize("failed", ansiRed, useColor), step.Err)
		default:
			fmt.Fprintf(out, "  %-16s %s\n", step.Step, colorize("ok", ansiGreen, useColor))
		}
	}

	switch {
	case outcome.Failed():
		fmt.Fprintln(out, colorize(outcome.Summary(), ansiRed, useColor))
	case outcome.Partial():
		fmt.Fprintf(out, "%s (listing #%d)\n", colorize(outcome.Summary(), ansiYellow, useColor), outcome.ProductID)
	default:
		fmt.Fprintf(out, "%s (listing #%d)\n", colorize("Published", ansiGreen, useColor), outcome.ProductID)
	}
}

func notifyOutcome(cmd *cobra.Command, cfg *config.Config, draft *draftstore.Draft, outcome publish.Outcome) {
	service := notifications.NewService(cfg)
	var err error
	switch {
	case outcome.Failed():
		err = service.NotifyPublishFailed(cmd.Context(), draft.Name, outcome.Summary())
	case outcome.Partial():
		names := make([]string, 0, len(outcome.FailedSteps()))
		for _, step := range outcome.FailedSteps() {
			names = append(names, string(step.Step))
		}
		err = service.NotifyPublishedPartial(cmd.Context(), draft.Name, outcome.ProductID, names)
	default:
		err = service.NotifyPublished(cmd.Context(), draft.Name, outcome.ProductID)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: notification failed: %v\n", err)
	}
}
