package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"wares/internal/catalog"
	"wares/internal/draftstore"
	"wares/internal/media"
	"wares/internal/product"
)

func newDraftCommand(ctx *commandContext) *cobra.Command {
	draftCmd := &cobra.Command{
		Use:   "draft",
		Short: "Create and edit listing drafts",
	}

	draftCmd.AddCommand(newDraftNewCommand(ctx))
	draftCmd.AddCommand(newDraftListCommand(ctx))
	draftCmd.AddCommand(newDraftShowCommand(ctx))
	draftCmd.AddCommand(newDraftSetCommand(ctx))
	draftCmd.AddCommand(newDraftAttrCommand(ctx))
	draftCmd.AddCommand(newDraftTagCommand(ctx))
	draftCmd.AddCommand(newDraftRemoveCommand(ctx))

	return draftCmd
}

func loadDraft(ctx context.Context, store *draftstore.Store, arg string) (*draftstore.Draft, error) {
	id, err := parseDraftID(arg)
	if err != nil {
		return nil, err
	}
	draft, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("no draft with id %d", id)
	}
	return draft, nil
}

func newDraftNewCommand(ctx *commandContext) *cobra.Command {
	var categoryID string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new listing draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("draft name must not be empty")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := store.Create(cmd.Context(), &draftstore.Draft{
					Name:       name,
					CategoryID: strings.TrimSpace(categoryID),
					OwnerID:    cfg.Marketplace.OwnerID,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created draft %d: %s\n", draft.ID, draft.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryID, "category", "", "Initial category id")
	return cmd
}

func newDraftListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				drafts, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(drafts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No drafts")
					return nil
				}
				rows := make([][]string, 0, len(drafts))
				for _, draft := range drafts {
					published := "-"
					if draft.ProductID > 0 {
						published = fmt.Sprintf("#%d", draft.ProductID)
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", draft.ID),
						draft.Name,
						draft.CategoryID,
						formatPrice(draft.Price),
						published,
						draft.UpdatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Category", "Price", "Listing", "Updated"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newDraftShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a draft in detail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rec := draft.Record()

				fmt.Fprintf(out, "Draft %d: %s\n", draft.ID, rec.Name)
				if rec.Persisted() {
					fmt.Fprintf(out, "  Listing:        #%d\n", rec.ID)
				}
				fmt.Fprintf(out, "  Category:       %s\n", valueOrDash(rec.CategoryID))
				fmt.Fprintf(out, "  Subcategory:    %s\n", valueOrDash(rec.SubcategoryID))
				fmt.Fprintf(out, "  Manufacturer:   %s\n", valueOrDash(rec.Manufacturer))
				fmt.Fprintf(out, "  Model:          %s\n", valueOrDash(rec.Model))
				fmt.Fprintf(out, "  Price:          %s\n", formatPrice(rec.Price))
				fmt.Fprintf(out, "  Stock:          %d\n", rec.StockQuantity)
				fmt.Fprintf(out, "  Tags:           %s\n", valueOrDash(strings.Join(rec.TagStrings(), ", ")))
				fmt.Fprintf(out, "  Direct sale:    %s\n", yesNo(rec.DirectSale))
				fmt.Fprintf(out, "  Hide price:     %s\n", yesNo(rec.HidePrice))
				fmt.Fprintf(out, "  Online payment: %s\n", yesNo(rec.OnlinePayment))
				if draft.LastOutcome != "" {
					fmt.Fprintf(out, "  Last publish:   %s\n", draft.LastOutcome)
				}

				printDraftAttributes(cmd, ctx, draft)
				printDraftMedia(out, draft.MediaChannels(ctx.ensureLogger()))
				return nil
			})
		},
		Args: cobra.ExactArgs(1),
	}
}

// printDraftAttributes renders stored values against the resolved schema when
// the category directory is reachable, and falls back to the raw values when
// it is not. Stored values outside the current schema are shown as inactive.
func printDraftAttributes(cmd *cobra.Command, ctx *commandContext, draft *draftstore.Draft) {
	out := cmd.OutOrStdout()
	attrs := draft.AttributeStore()
	if attrs.Len() == 0 {
		return
	}
	fmt.Fprintln(out, "\nAttributes:")

	directory, err := ctx.ensureDirectory(cmd)
	if err == nil {
		resolution, rerr := directory.Resolve(draft.CategoryID, draft.SubcategoryID)
		if rerr == nil && resolution.Ready() {
			active := make(map[string]bool, len(resolution.Fields))
			for _, field := range resolution.Fields {
				active[field.Name] = true
				if value, ok := attrs.Get(field.Name); ok {
					fmt.Fprintf(out, "  %s: %s\n", fieldLabel(field), value)
				}
			}
			for _, name := range attrs.Names() {
				if !active[name] {
					value, _ := attrs.Get(name)
					fmt.Fprintf(out, "  %s: %s (not in current category)\n", name, value)
				}
			}
			return
		}
	}
	for _, name := range attrs.Names() {
		value, _ := attrs.Get(name)
		fmt.Fprintf(out, "  %s: %s\n", name, value)
	}
}

func printDraftMedia(out io.Writer, channels *media.Channels) {
	fmt.Fprintln(out, "\nMedia:")
	if item := channels.PersistedBrochure(); item != nil {
		fmt.Fprintf(out, "  brochure: %s (#%d)\n", item.Locator, item.ID)
	}
	if staged := channels.StagedBrochure(); staged != nil {
		fmt.Fprintf(out, "  brochure: %s (staged)\n", staged.Path)
	}
	if staged := channels.StagedPrimary(); staged != nil {
		fmt.Fprintf(out, "  primary:  %s (staged %s)\n", staged.Path, staged.Handle)
	}
	primary, hasPrimary := channels.PersistedPrimary()
	for _, item := range channels.Persisted() {
		label := string(item.Kind)
		if hasPrimary && item.ID == primary.ID {
			label = "primary"
		}
		fmt.Fprintf(out, "  %-9s %s (#%d)\n", label+":", item.Locator, item.ID)
	}
	for _, staged := range channels.StagedGallery() {
		fmt.Fprintf(out, "  image:    %s (staged %s)\n", staged.Path, staged.Handle)
	}
	for _, link := range channels.StagedVideoLinks() {
		fmt.Fprintf(out, "  video:    %s (staged)\n", link)
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func newDraftSetCommand(ctx *commandContext) *cobra.Command {
	var (
		name          string
		description   string
		manufacturer  string
		model         string
		price         float64
		stock         int
		category      string
		subcategory   string
		directSale    bool
		hidePrice     bool
		onlinePayment bool
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update a draft's base fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				rec := draft.Record()

				flags := cmd.Flags()
				if flags.Changed("name") {
					rec.Name = strings.TrimSpace(name)
				}
				if flags.Changed("description") {
					rec.Description = description
				}
				if flags.Changed("manufacturer") {
					rec.Manufacturer = strings.TrimSpace(manufacturer)
				}
				if flags.Changed("model") {
					rec.Model = strings.TrimSpace(model)
				}
				if flags.Changed("price") {
					if price < 0 {
						return fmt.Errorf("price must not be negative")
					}
					rec.Price = price
				}
				if flags.Changed("stock") {
					rec.StockQuantity = stock
				}
				if flags.Changed("direct-sale") {
					rec.DirectSale = directSale
				}
				if flags.Changed("hide-price") {
					rec.HidePrice = hidePrice
				}
				if flags.Changed("online-payment") {
					rec.OnlinePayment = onlinePayment
				}

				if flags.Changed("category") || flags.Changed("subcategory") {
					directory, err := ctx.ensureDirectory(cmd)
					if err != nil {
						return err
					}
					if flags.Changed("category") {
						if _, ok := directory.Category(category); !ok {
							return fmt.Errorf("unknown category %q", category)
						}
						rec.SetCategory(category)
					}
					if flags.Changed("subcategory") {
						rec.SubcategoryID = strings.TrimSpace(subcategory)
					}
					resolution, err := directory.Resolve(rec.CategoryID, rec.SubcategoryID)
					if err != nil {
						return err
					}
					if resolution.Notice != catalog.NoticeNone {
						fmt.Fprintln(cmd.OutOrStdout(), string(resolution.Notice))
					}
				}

				draft.Apply(rec, draft.AttributeStore(), draft.MediaChannels(ctx.ensureLogger()))
				if _, err := store.Update(cmd.Context(), draft); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated draft %d\n", draft.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&description, "description", "", "Product description")
	cmd.Flags().StringVar(&manufacturer, "manufacturer", "", "Manufacturer")
	cmd.Flags().StringVar(&model, "model", "", "Model")
	cmd.Flags().Float64Var(&price, "price", 0, "Price")
	cmd.Flags().IntVar(&stock, "stock", 0, "Stock quantity")
	cmd.Flags().StringVar(&category, "category", "", "Category id")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "Subcategory id")
	cmd.Flags().BoolVar(&directSale, "direct-sale", false, "Enable direct sale")
	cmd.Flags().BoolVar(&hidePrice, "hide-price", false, "Hide the price on the listing")
	cmd.Flags().BoolVar(&onlinePayment, "online-payment", false, "Enable online payment")
	return cmd
}

func newDraftAttrCommand(ctx *commandContext) *cobra.Command {
	var (
		check   string
		uncheck string
		clear   bool
	)

	cmd := &cobra.Command{
		Use:   "attr <id> <field> [value]",
		Short: "Set an attribute value on a draft",
		Long: `Set an attribute value on a draft.

Plain fields take the value argument. Checkbox fields are edited one option
at a time with --check or --uncheck; the stored value is the comma-joined
set of selected options.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				field := strings.TrimSpace(args[1])
				if field == "" {
					return fmt.Errorf("field name must not be empty")
				}
				attrs := draft.AttributeStore()

				switch {
				case clear:
					attrs.Delete(field)
				case check != "":
					attrs.ToggleCheckboxOption(field, check, true)
				case uncheck != "":
					attrs.ToggleCheckboxOption(field, uncheck, false)
				case len(args) == 3:
					attrs.Set(field, args[2])
				default:
					return fmt.Errorf("provide a value, --check, --uncheck, or --clear")
				}

				draft.Apply(draft.Record(), attrs, draft.MediaChannels(ctx.ensureLogger()))
				if _, err := store.Update(cmd.Context(), draft); err != nil {
					return err
				}
				if value, ok := attrs.Get(field); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", field, value)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s cleared\n", field)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&check, "check", "", "Select a checkbox option")
	cmd.Flags().StringVar(&uncheck, "uncheck", "", "Deselect a checkbox option")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the stored value")
	return cmd
}

func newDraftTagCommand(ctx *commandContext) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "tag <id> <new|used|rental|attachments>",
		Short: "Toggle a product type tag",
		Long: `Toggle a product type tag. Tags combine freely except "new" and
"used", which exclude each other: enabling one clears the other.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := product.ParseTypeTag(args[1])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				rec := draft.Record()
				rec.ToggleTag(tag, !off)

				draft.Apply(rec, draft.AttributeStore(), draft.MediaChannels(ctx.ensureLogger()))
				if _, err := store.Update(cmd.Context(), draft); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tags: %s\n", strings.Join(rec.TagStrings(), ", "))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Clear the tag instead of setting it")
	return cmd
}

func newDraftRemoveCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *draftstore.Store) error {
				draft, err := loadDraft(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				if !yes {
					return fmt.Errorf("removing draft %d (%q) requires --yes", draft.ID, draft.Name)
				}
				if err := store.Delete(cmd.Context(), draft.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed draft %d\n", draft.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm removal")
	return cmd
}
