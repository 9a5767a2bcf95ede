// Package testutil creates throwaway SQLite CMS databases for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/cmsmod/internal/config"
	"github.com/Rana718/cmsmod/internal/database"
)

const schema = `
CREATE TABLE cms_cmsplugin (
	id INTEGER PRIMARY KEY,
	parent_id INTEGER REFERENCES cms_cmsplugin(id),
	plugin_type TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE djangocms_modules_category (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE djangocms_modules_moduleplugin (
	cmsplugin_ptr_id INTEGER PRIMARY KEY REFERENCES cms_cmsplugin(id),
	module_name TEXT NOT NULL,
	module_category_id INTEGER REFERENCES djangocms_modules_category(id)
);
CREATE TABLE djangocms_text_text (
	cmsplugin_ptr_id INTEGER PRIMARY KEY REFERENCES cms_cmsplugin(id),
	body TEXT NOT NULL
);
`

// DB is a seeded SQLite database living in the test's temp dir.
type DB struct {
	t     testing.TB
	URL   string
	Store *database.SQLStore
	Raw   *sqlx.DB
}

// SQLiteConfig returns the config the fixture database is built for.
func SQLiteConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Provider = "sqlite"
	cfg.Database.Driver = ""
	return cfg
}

func NewSQLite(t testing.TB) *DB {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "cms.db")
	store, err := database.Connect(context.Background(), SQLiteConfig(), url, zerolog.Nop())
	require.NoError(t, err, "error in arranging test database")
	t.Cleanup(func() { store.Close() })

	_, err = store.DB().Exec(schema)
	require.NoError(t, err, "error in arranging test schema")

	return &DB{t: t, URL: url, Store: store, Raw: store.DB()}
}

func (d *DB) GivenCategory(name string) int64 {
	d.t.Helper()
	res, err := d.Raw.Exec(`INSERT INTO djangocms_modules_category (name) VALUES (?)`, name)
	require.NoError(d.t, err, "error in arranging test data")
	id, err := res.LastInsertId()
	require.NoError(d.t, err)
	return id
}

// GivenPlugin adds a plain plugin below parentID (0 for a root plugin).
func (d *DB) GivenPlugin(parentID int64) int64 {
	d.t.Helper()
	var parent any
	if parentID != 0 {
		parent = parentID
	}
	res, err := d.Raw.Exec(`INSERT INTO cms_cmsplugin (parent_id, plugin_type) VALUES (?, ?)`, parent, "TextPlugin")
	require.NoError(d.t, err, "error in arranging test data")
	id, err := res.LastInsertId()
	require.NoError(d.t, err)
	return id
}

// GivenModule adds a root module plugin in categoryID (0 for none).
func (d *DB) GivenModule(name string, categoryID int64) int64 {
	return d.GivenModuleUnder(0, name, categoryID)
}

func (d *DB) GivenModuleUnder(parentID int64, name string, categoryID int64) int64 {
	d.t.Helper()
	id := d.GivenPlugin(parentID)
	_, err := d.Raw.Exec(`UPDATE cms_cmsplugin SET plugin_type = 'Module' WHERE id = ?`, id)
	require.NoError(d.t, err)

	var category any
	if categoryID != 0 {
		category = categoryID
	}
	_, err = d.Raw.Exec(
		`INSERT INTO djangocms_modules_moduleplugin (cmsplugin_ptr_id, module_name, module_category_id) VALUES (?, ?, ?)`,
		id, name, category)
	require.NoError(d.t, err, "error in arranging test data")
	return id
}

// GivenTextPlugin adds a text plugin with its subtype row below parentID.
func (d *DB) GivenTextPlugin(parentID int64, body string) int64 {
	d.t.Helper()
	id := d.GivenPlugin(parentID)
	_, err := d.Raw.Exec(`INSERT INTO djangocms_text_text (cmsplugin_ptr_id, body) VALUES (?, ?)`, id, body)
	require.NoError(d.t, err, "error in arranging test data")
	return id
}

// GivenChildren adds n plugins directly below parentID.
func (d *DB) GivenChildren(parentID int64, n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = d.GivenPlugin(parentID)
	}
	return ids
}

func (d *DB) Count(table string) int {
	d.t.Helper()
	var n int
	require.NoError(d.t, d.Raw.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)))
	return n
}

func (d *DB) Exists(table, column string, id int64) bool {
	d.t.Helper()
	var n int
	require.NoError(d.t, d.Raw.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, column), id))
	return n > 0
}

// Snapshot is a row count per CMS table.
type Snapshot struct {
	Plugins    int
	Modules    int
	Categories int
	Texts      int
}

func (d *DB) Snapshot() Snapshot {
	return Snapshot{
		Plugins:    d.Count("cms_cmsplugin"),
		Modules:    d.Count("djangocms_modules_moduleplugin"),
		Categories: d.Count("djangocms_modules_category"),
		Texts:      d.Count("djangocms_text_text"),
	}
}
