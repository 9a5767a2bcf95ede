package database

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/Rana718/cmsmod/internal/config"
	"github.com/Rana718/cmsmod/internal/types"
)

const (
	colPluginID       = "id"
	colParentID       = "parent_id"
	colModulePtr      = "cmsplugin_ptr_id"
	colModuleName     = "module_name"
	colModuleCategory = "module_category_id"
	colCategoryID     = "id"
	colCategoryName   = "name"
)

// descendantsQuery walks parent_id links below one node. Table names come
// from validated config, so they are safe to format in.
const descendantsQuery = `WITH RECURSIVE tree (id, depth) AS (
	SELECT %[1]s, 1 FROM %[3]s WHERE %[2]s = ?
	UNION ALL
	SELECT p.%[1]s, t.depth + 1 FROM %[3]s p INNER JOIN tree t ON p.%[2]s = t.id
)
SELECT id, depth FROM tree ORDER BY depth, id`

var _ ModuleStore = (*SQLStore)(nil)

// SQLStore implements ModuleStore on database/sql through sqlx. A store
// returned by WithTx shares the connection pool but runs every statement on
// its transaction.
type SQLStore struct {
	db          *sqlx.DB
	q           sqlx.ExtContext
	tx          *sqlx.Tx
	qb          squirrel.StatementBuilderType
	driver      string
	placeholder squirrel.PlaceholderFormat
	tables      config.Tables
	subtypes    *subtypeCache
	log         zerolog.Logger
}

// pluginRef is a table whose rows point at plugin rows, like a plugin
// subtype table keyed on cmsplugin_ptr_id.
type pluginRef struct {
	Table  string `db:"table_name"`
	Column string `db:"column_name"`
}

type subtypeCache struct {
	once sync.Once
	refs []pluginRef
	err  error
}

type treeNode struct {
	ID    int64 `db:"id"`
	Depth int   `db:"depth"`
}

func NewSQLStore(db *sqlx.DB, driver string, placeholder squirrel.PlaceholderFormat, tables config.Tables, log zerolog.Logger) *SQLStore {
	return &SQLStore{
		db:          db,
		q:           db,
		qb:          squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		driver:      driver,
		placeholder: placeholder,
		tables:      tables,
		subtypes:    &subtypeCache{},
		log:         log,
	}
}

func (s *SQLStore) DB() *sqlx.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) ListModules(ctx context.Context) ([]types.ModuleRecord, error) {
	query, args, err := s.qb.Select(colModulePtr, colModuleName, colModuleCategory).
		From(s.tables.Modules).
		OrderBy(colModulePtr).
		ToSql()
	if err != nil {
		return nil, err
	}

	var modules []types.ModuleRecord
	if err := sqlx.SelectContext(ctx, s.q, &modules, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (s *SQLStore) ModuleExists(ctx context.Context, id int64) (bool, error) {
	n, err := s.count(ctx, s.qb.Select("COUNT(*)").From(s.tables.Modules).Where(squirrel.Eq{colModulePtr: id}))
	if err != nil {
		return false, fmt.Errorf("failed to look up module %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLStore) Descendants(ctx context.Context, pluginID int64) ([]int64, error) {
	nodes, err := s.tree(ctx, pluginID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids, nil
}

func (s *SQLStore) tree(ctx context.Context, pluginID int64) ([]treeNode, error) {
	query, err := s.descendantsSQL()
	if err != nil {
		return nil, err
	}

	var nodes []treeNode
	if err := sqlx.SelectContext(ctx, s.q, &nodes, query, pluginID); err != nil {
		return nil, fmt.Errorf("failed to load plugin tree of %d: %w", pluginID, err)
	}
	return nodes, nil
}

func (s *SQLStore) descendantsSQL() (string, error) {
	return s.placeholder.ReplacePlaceholders(
		fmt.Sprintf(descendantsQuery, colPluginID, colParentID, s.tables.Plugins))
}

// DeleteModule removes module rows inside the subtree first, then the rows of
// every plugin subtype table, then the plugin rows deepest level first so
// parent_id references never dangle mid-delete. Django creates no ON DELETE
// CASCADE constraints, so nothing is left to the database.
func (s *SQLStore) DeleteModule(ctx context.Context, id int64) error {
	nodes, err := s.tree(ctx, id)
	if err != nil {
		return err
	}

	all := []int64{id}
	levels := map[int][]int64{}
	maxDepth := 0
	for _, n := range nodes {
		all = append(all, n.ID)
		levels[n.Depth] = append(levels[n.Depth], n.ID)
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}
	levels[0] = []int64{id}

	if err := s.exec(ctx, s.qb.Delete(s.tables.Modules).Where(squirrel.Eq{colModulePtr: all})); err != nil {
		return fmt.Errorf("failed to delete module rows: %w", err)
	}

	refs, err := s.pluginRefs(ctx)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := s.exec(ctx, s.qb.Delete(ref.Table).Where(squirrel.Eq{ref.Column: all})); err != nil {
			return fmt.Errorf("failed to delete %s rows: %w", ref.Table, err)
		}
	}

	for depth := maxDepth; depth >= 0; depth-- {
		if err := s.exec(ctx, s.qb.Delete(s.tables.Plugins).Where(squirrel.Eq{colPluginID: levels[depth]})); err != nil {
			return fmt.Errorf("failed to delete plugins at depth %d: %w", depth, err)
		}
	}

	s.log.Debug().Int64("module_id", id).Int("descendants", len(nodes)).Msg("module deleted")
	return nil
}

// pluginRefs lists the tables other than the module table that reference
// plugin rows: the foreign keys found in the schema plus tables.plugin_subtypes
// keyed on cmsplugin_ptr_id. The lookup runs once per store.
func (s *SQLStore) pluginRefs(ctx context.Context) ([]pluginRef, error) {
	s.subtypes.once.Do(func() {
		s.subtypes.refs, s.subtypes.err = s.discoverPluginRefs(ctx)
	})
	return s.subtypes.refs, s.subtypes.err
}

func (s *SQLStore) discoverPluginRefs(ctx context.Context) ([]pluginRef, error) {
	plugins := s.tables.Plugins
	if i := strings.LastIndex(plugins, "."); i >= 0 {
		plugins = plugins[i+1:]
	}

	var found []pluginRef
	if err := sqlx.SelectContext(ctx, s.q, &found, s.foreignKeysSQL(), plugins); err != nil {
		return nil, fmt.Errorf("failed to look up tables referencing %s: %w", s.tables.Plugins, err)
	}
	for _, name := range s.tables.PluginSubtypes {
		found = append(found, pluginRef{Table: name, Column: colModulePtr})
	}

	seen := map[pluginRef]bool{}
	var refs []pluginRef
	for _, ref := range found {
		if ref.Table == plugins || ref.Table == s.tables.Plugins || ref.Table == s.tables.Modules || seen[ref] {
			continue
		}
		if !config.IsIdentifier(ref.Table) || !config.IsIdentifier(ref.Column) {
			return nil, fmt.Errorf("refusing to delete from %q.%q: not a plain identifier", ref.Table, ref.Column)
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	s.log.Debug().Interface("tables", refs).Msg("plugin subtype tables resolved")
	return refs, nil
}

func (s *SQLStore) foreignKeysSQL() string {
	var query string
	switch s.driver {
	case driverMySQL:
		query = `SELECT DISTINCT table_name AS table_name, column_name AS column_name
FROM information_schema.key_column_usage
WHERE referenced_table_schema = DATABASE() AND referenced_table_name = ?
ORDER BY table_name, column_name`
	case driverSQLite:
		query = `SELECT m.name AS table_name, f."from" AS column_name
FROM sqlite_master m, pragma_foreign_key_list(m.name) f
WHERE m.type = 'table' AND f."table" = ?
ORDER BY m.name, f."from"`
	default:
		query = `SELECT DISTINCT kcu.table_name::text AS table_name, kcu.column_name::text AS column_name
FROM information_schema.referential_constraints rc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_schema = rc.constraint_schema AND kcu.constraint_name = rc.constraint_name
JOIN information_schema.table_constraints tc
	ON tc.constraint_schema = rc.unique_constraint_schema AND tc.constraint_name = rc.unique_constraint_name
WHERE tc.table_name = ? AND kcu.table_schema = current_schema()
ORDER BY 1, 2`
	}
	query, _ = s.placeholder.ReplacePlaceholders(query)
	return query
}

func (s *SQLStore) CountCategories(ctx context.Context) (int, error) {
	n, err := s.count(ctx, s.qb.Select("COUNT(*)").From(s.tables.Categories))
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]types.Category, error) {
	query, args, err := s.qb.Select(colCategoryID, colCategoryName).
		From(s.tables.Categories).
		OrderBy(colCategoryID).
		ToSql()
	if err != nil {
		return nil, err
	}

	var categories []types.Category
	if err := sqlx.SelectContext(ctx, s.q, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *SQLStore) CountCategoryModules(ctx context.Context, categoryID int64) (int, error) {
	n, err := s.count(ctx, s.qb.Select("COUNT(*)").From(s.tables.Modules).Where(squirrel.Eq{colModuleCategory: categoryID}))
	if err != nil {
		return 0, fmt.Errorf("failed to count modules of category %d: %w", categoryID, err)
	}
	return n, nil
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.exec(ctx, s.qb.Delete(s.tables.Categories).Where(squirrel.Eq{colCategoryID: id})); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	s.log.Debug().Int64("category_id", id).Msg("category deleted")
	return nil
}

func (s *SQLStore) WithTx(ctx context.Context, fn func(tx ModuleStore) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txStore := *s
	txStore.q = tx
	txStore.tx = tx

	if err := fn(&txStore); err != nil {
		s.log.Debug().Err(err).Msg("transaction rolled back")
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Debug().Msg("transaction committed")
	return nil
}

func (s *SQLStore) count(ctx context.Context, b squirrel.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := sqlx.GetContext(ctx, s.q, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLStore) exec(ctx context.Context, b squirrel.DeleteBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, query, args...)
	return err
}
