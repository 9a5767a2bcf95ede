package database

import (
	"context"

	"github.com/Rana718/cmsmod/internal/types"
)

// ModuleStore is the persistence surface used by the module commands.
type ModuleStore interface {
	ListModules(ctx context.Context) ([]types.ModuleRecord, error)
	ModuleExists(ctx context.Context, id int64) (bool, error)
	// Descendants returns the ids of every plugin below the given node,
	// excluding the node itself.
	Descendants(ctx context.Context, pluginID int64) ([]int64, error)
	// DeleteModule removes the module row and its whole plugin subtree.
	DeleteModule(ctx context.Context, id int64) error

	CountCategories(ctx context.Context) (int, error)
	ListCategories(ctx context.Context) ([]types.Category, error)
	CountCategoryModules(ctx context.Context, categoryID int64) (int, error)
	DeleteCategory(ctx context.Context, id int64) error

	// WithTx runs fn against a store bound to one transaction. The
	// transaction commits only if fn returns nil.
	WithTx(ctx context.Context, fn func(tx ModuleStore) error) error
}
