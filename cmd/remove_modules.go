package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rana718/cmsmod/internal/remover"
	"github.com/Rana718/cmsmod/internal/reporter"
)

func newRemoveModulesCmd() *cobra.Command {
	var (
		opts       remover.Options
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "remove-modules",
		Short: "Remove all Module CMS plugins and optionally their categories",
		Long: `
Remove all Module CMS plugins and optionally their categories.

Every Module plugin is deleted together with all of its child plugins. All
deletions run in one transaction: if anything fails, nothing is removed.

1. Counts Module plugins, their child plugins and categories
2. Prompts for confirmation (unless --force or --dry-run is used)
3. Deletes the plugins, then categories left without modules (--remove-categories)

⚠️  WARNING: This permanently deletes content from your site!`,
		Example: `  cmsmod remove-modules --dry-run
  cmsmod remove-modules --remove-categories --force --report removed.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbosity < 0 || opts.Verbosity > 2 {
				return fmt.Errorf("invalid verbosity %d (choose from 0, 1, 2)", opts.Verbosity)
			}

			ctx := cmd.Context()

			store, log, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			console := reporter.NewConsole(cmd.OutOrStdout(), cmd.InOrStdin())
			res, err := remover.New(store, console, console, opts, log).Run(ctx)
			if err != nil {
				return err
			}

			if reportPath != "" && res.Executed {
				if err := remover.WriteReport(reportPath, remover.NewReport(res, opts, time.Now())); err != nil {
					return err
				}
				if opts.Verbosity >= 1 {
					console.Write(reporter.Info, fmt.Sprintf("Report written to %s", reportPath))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be deleted without actually deleting it")
	cmd.Flags().BoolVar(&opts.RemoveCategories, "remove-categories", false, "Also remove empty categories after removing modules")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Skip confirmation prompts")
	cmd.Flags().IntVar(&opts.Verbosity, "verbosity", 1, "Verbosity level; 0=minimal output, 1=normal output, 2=verbose output")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML report of deleted rows to this file")

	return cmd
}

func init() {
	rootCmd.AddCommand(newRemoveModulesCmd())
}
