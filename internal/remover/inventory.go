package remover

import (
	"context"
	"fmt"

	"github.com/Rana718/cmsmod/internal/database"
	"github.com/Rana718/cmsmod/internal/types"
)

// TakeInventory counts modules, their child plugins and categories without
// changing anything.
func TakeInventory(ctx context.Context, store database.ModuleStore) (types.Inventory, error) {
	var inv types.Inventory

	modules, err := store.ListModules(ctx)
	if err != nil {
		return inv, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	inv.Modules = len(modules)
	for _, m := range modules {
		ids, err := store.Descendants(ctx, m.ID)
		if err != nil {
			return inv, fmt.Errorf("%w: %w", ErrUnexpected, err)
		}
		inv.Children += len(ids)
	}

	categories, err := store.ListCategories(ctx)
	if err != nil {
		return inv, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	inv.Categories = len(categories)
	for _, c := range categories {
		n, err := store.CountCategoryModules(ctx, c.ID)
		if err != nil {
			return inv, fmt.Errorf("%w: %w", ErrUnexpected, err)
		}
		if n == 0 {
			inv.EmptyCategories++
		}
	}
	return inv, nil
}
