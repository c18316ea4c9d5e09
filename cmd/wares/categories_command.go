package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wares/internal/attributes"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var showSchema bool

	cmd := &cobra.Command{
		Use:   "categories [category-id]",
		Short: "List marketplace categories and their attribute schemas",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory, err := ctx.ensureDirectory(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				category, ok := directory.Category(args[0])
				if !ok {
					return fmt.Errorf("unknown category %q", args[0])
				}
				fmt.Fprintf(out, "%s (%s)\n", category.Name, category.ID)
				if category.HasSubcategories() {
					for _, sub := range category.Subcategories {
						fmt.Fprintf(out, "  %s (%s)\n", sub.Name, sub.ID)
						if showSchema {
							printSchema(cmd, sub.Schema, "    ")
						}
					}
					return nil
				}
				if showSchema {
					printSchema(cmd, category.Schema, "  ")
				}
				return nil
			}

			rows := make([][]string, 0)
			for _, category := range directory.Categories() {
				rows = append(rows, []string{
					category.ID,
					category.Name,
					strconv.Itoa(len(category.Subcategories)),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No categories available")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Subcategories"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSchema, "schema", false, "Show attribute schemas")
	return cmd
}

func printSchema(cmd *cobra.Command, schema []attributes.FieldDef, indent string) {
	out := cmd.OutOrStdout()
	if len(schema) == 0 {
		fmt.Fprintf(out, "%s(no attributes)\n", indent)
		return
	}
	for _, field := range schema {
		required := ""
		if field.Required {
			required = " required"
		}
		fmt.Fprintf(out, "%s%s [%s]%s\n", indent, fieldLabel(field), field.Kind, required)
		for _, option := range field.Options {
			fmt.Fprintf(out, "%s  - %s\n", indent, option.Label)
		}
	}
}
