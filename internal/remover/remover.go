package remover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Rana718/cmsmod/internal/database"
	"github.com/Rana718/cmsmod/internal/reporter"
	"github.com/Rana718/cmsmod/internal/types"
	"github.com/Rana718/cmsmod/internal/utils"
)

var (
	// ErrUnexpected wraps failures before the deletion transaction starts.
	ErrUnexpected = errors.New("unexpected error")
	// ErrDeletion wraps failures inside the deletion transaction. The
	// transaction is rolled back, so nothing was deleted.
	ErrDeletion = errors.New("error during deletion")
)

type Options struct {
	DryRun           bool
	RemoveCategories bool
	Force            bool
	Verbosity        int
}

// Result describes what a run found and, when it deleted, what it removed.
type Result struct {
	Found       types.DeleteCounts
	Deleted     types.DeleteCounts
	Modules     []types.DeletedModule
	Categories  []types.Category
	DryRun      bool
	Cancelled   bool
	Executed    bool
	NothingToDo bool
}

type Remover struct {
	store  database.ModuleStore
	out    reporter.Reporter
	prompt reporter.Prompter
	opts   Options
	log    zerolog.Logger
}

func New(store database.ModuleStore, out reporter.Reporter, prompt reporter.Prompter, opts Options, log zerolog.Logger) *Remover {
	return &Remover{
		store:  store,
		out:    out,
		prompt: prompt,
		opts:   opts,
		log:    log,
	}
}

// Run removes every module plugin with its child plugins and, if asked,
// the categories left without modules.
func (r *Remover) Run(ctx context.Context) (*Result, error) {
	res := &Result{DryRun: r.opts.DryRun}

	modules, err := r.store.ListModules(ctx)
	if err != nil {
		return nil, unexpected(err)
	}
	categoryCount, err := r.store.CountCategories(ctx)
	if err != nil {
		return nil, unexpected(err)
	}

	if len(modules) == 0 {
		r.say(1, reporter.Warning, "No Module plugins found to remove.")
		res.NothingToDo = true
		return res, nil
	}

	childCounts := make(map[int64]int, len(modules))
	children := 0
	for _, m := range modules {
		ids, err := r.store.Descendants(ctx, m.ID)
		if err != nil {
			return nil, unexpected(err)
		}
		childCounts[m.ID] = len(ids)
		children += len(ids)
	}
	res.Found = types.DeleteCounts{Modules: len(modules), Children: children, Categories: categoryCount}

	r.say(1, reporter.Warning, fmt.Sprintf("Found %d Module plugin%s with %d child plugin%s",
		len(modules), utils.PluralizeS(len(modules)), children, utils.PluralizeS(children)))
	if r.opts.RemoveCategories {
		r.say(1, reporter.Warning, fmt.Sprintf("Found %d categor%s that will be removed",
			categoryCount, utils.Pluralize(categoryCount, "y,ies")))
	}

	if r.opts.DryRun {
		r.say(1, reporter.Success, "DRY RUN MODE - No changes will be made")
	} else if !r.opts.Force {
		ok, err := r.confirm(len(modules), children, categoryCount)
		if err != nil {
			return nil, unexpected(err)
		}
		if !ok {
			r.say(1, reporter.Error, "Operation cancelled.")
			res.Cancelled = true
			return res, nil
		}
	}

	if r.opts.Verbosity >= 2 {
		r.out.Write(reporter.Info, "Detailed breakdown:")
		for _, m := range modules {
			n := childCounts[m.ID]
			r.out.Write(reporter.Info, fmt.Sprintf("  Module \"%s\" (ID: %d) has %d child plugin%s",
				m.Name, m.ID, n, utils.PluralizeS(n)))
		}
	}

	if r.opts.DryRun {
		r.say(1, reporter.Success, "Dry run completed. Use --force to skip confirmation.")
		return res, nil
	}

	if err := r.delete(ctx, modules, res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeletion, err)
	}
	res.Executed = true

	r.say(1, reporter.Success, fmt.Sprintf("Successfully deleted %d Module plugins, %d child plugins",
		res.Deleted.Modules, res.Deleted.Children))
	if r.opts.RemoveCategories && res.Deleted.Categories > 0 {
		r.say(1, reporter.Success, fmt.Sprintf("Successfully deleted %d empty categor%s",
			res.Deleted.Categories, utils.Pluralize(res.Deleted.Categories, "y,ies")))
	}

	return res, nil
}

// delete runs inside one transaction. Child counts are taken again from the
// transaction's view so the reported totals match what was removed.
func (r *Remover) delete(ctx context.Context, modules []types.ModuleRecord, res *Result) error {
	var (
		counts     types.DeleteCounts
		deleted    []types.DeletedModule
		categories []types.Category
	)

	err := r.store.WithTx(ctx, func(tx database.ModuleStore) error {
		for _, m := range modules {
			exists, err := tx.ModuleExists(ctx, m.ID)
			if err != nil {
				return err
			}

			// a module removed with an enclosing subtree still counts, with
			// no children left of its own
			var ids []int64
			if exists {
				if ids, err = tx.Descendants(ctx, m.ID); err != nil {
					return err
				}
			}
			r.detail(fmt.Sprintf("Deleting Module \"%s\" and %d child plugin%s...", m.Name, len(ids), utils.PluralizeS(len(ids))))

			if exists {
				if err := tx.DeleteModule(ctx, m.ID); err != nil {
					return err
				}
			} else {
				r.log.Debug().Int64("module_id", m.ID).Msg("module already removed with an enclosing module")
			}
			counts.Modules++
			counts.Children += len(ids)
			deleted = append(deleted, types.DeletedModule{ID: m.ID, Name: m.Name, ChildCount: len(ids)})
		}

		if !r.opts.RemoveCategories {
			return nil
		}

		all, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}
		var empty []types.Category
		for _, c := range all {
			n, err := tx.CountCategoryModules(ctx, c.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				empty = append(empty, c)
			}
		}
		for _, c := range empty {
			r.detail(fmt.Sprintf("Deleting empty category \"%s\"...", c.Name))
			if err := tx.DeleteCategory(ctx, c.ID); err != nil {
				return err
			}
			counts.Categories++
			categories = append(categories, c)
		}
		return nil
	})
	if err != nil {
		return err
	}

	res.Deleted = counts
	res.Modules = deleted
	res.Categories = categories
	return nil
}

func (r *Remover) confirm(modules, children, categories int) (bool, error) {
	total := modules + children

	var msg strings.Builder
	fmt.Fprintf(&msg, "This will permanently delete %d plugin%s (%d Module plugins and %d child plugins)",
		total, utils.PluralizeS(total), modules, children)
	if r.opts.RemoveCategories {
		fmt.Fprintf(&msg, " and %d categor%s", categories, utils.Pluralize(categories, "y,ies"))
	}
	msg.WriteString(".\n\nAre you sure? Type \"yes\" to continue: ")

	answer, err := r.prompt.Prompt(msg.String())
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.EqualFold(answer, "yes"), nil
}

func (r *Remover) say(minVerbosity int, level reporter.Level, text string) {
	if r.opts.Verbosity >= minVerbosity {
		r.out.Write(level, text)
	}
}

func (r *Remover) detail(text string) {
	r.say(2, reporter.Info, text)
}

func unexpected(err error) error {
	return fmt.Errorf("%w: %w", ErrUnexpected, err)
}
