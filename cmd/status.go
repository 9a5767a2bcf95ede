package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/cmsmod/internal/remover"
	"github.com/Rana718/cmsmod/internal/utils"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Module plugin and category counts",
		Long: `
Show how many Module plugins, child plugins and module categories exist,
and how many categories currently have no modules. Nothing is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			inv, err := remover.TakeInventory(ctx, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan, color.Bold).Fprintln(out, "Module plugins")
			fmt.Fprintf(out, "  Modules:          %d\n", inv.Modules)
			fmt.Fprintf(out, "  Child plugins:    %d\n", inv.Children)
			fmt.Fprintf(out, "  Categories:       %d\n", inv.Categories)
			fmt.Fprintf(out, "  Empty categories: %d\n", inv.EmptyCategories)

			if inv.EmptyCategories > 0 {
				color.New(color.FgYellow).Fprintf(out, "\n%d categor%s without modules\n",
					inv.EmptyCategories, utils.Pluralize(inv.EmptyCategories, "y,ies"))
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newStatusCmd())
}
