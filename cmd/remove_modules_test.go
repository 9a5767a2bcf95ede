package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/cmsmod/internal/remover"
	"github.com/Rana718/cmsmod/internal/testutil"
)

func init() {
	color.NoColor = true
}

func givenSQLiteEnv(t *testing.T) *testutil.DB {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	db := testutil.NewSQLite(t)
	t.Setenv("CMSMOD_DATABASE_PROVIDER", "sqlite")
	t.Setenv("CMSMOD_LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", db.URL)
	return db
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRemoveModulesHelp(t *testing.T) {
	out, err := execute(t, newRemoveModulesCmd(), "", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Remove all Module CMS plugins")
	assert.Contains(t, out, "--dry-run")
	assert.Contains(t, out, "--remove-categories")
	assert.Contains(t, out, "--force")
	assert.Contains(t, out, "--verbosity")
}

func TestRemoveModulesNoModules(t *testing.T) {
	givenSQLiteEnv(t)

	out, err := execute(t, newRemoveModulesCmd(), "", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "No Module plugins found to remove")
}

func TestRemoveModulesDryRun(t *testing.T) {
	db := givenSQLiteEnv(t)
	m := db.GivenModule("Hero", db.GivenCategory("Heroes"))
	db.GivenChildren(m, 2)
	before := db.Snapshot()

	out, err := execute(t, newRemoveModulesCmd(), "", "--dry-run", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN MODE")
	assert.Equal(t, before, db.Snapshot())
}

func TestRemoveModulesDeclined(t *testing.T) {
	db := givenSQLiteEnv(t)
	m := db.GivenModule("Hero", 0)
	db.GivenChildren(m, 1)
	before := db.Snapshot()

	out, err := execute(t, newRemoveModulesCmd(), "nope\n")
	require.NoError(t, err)
	assert.Contains(t, out, `Are you sure? Type "yes" to continue: `)
	assert.Contains(t, out, "Operation cancelled.")
	assert.Equal(t, before, db.Snapshot())
}

func TestRemoveModulesConfirmedWithReport(t *testing.T) {
	db := givenSQLiteEnv(t)
	cat := db.GivenCategory("Heroes")
	m := db.GivenModule("Hero", cat)
	db.GivenChildren(m, 2)
	report := filepath.Join(t.TempDir(), "removed.yaml")

	out, err := execute(t, newRemoveModulesCmd(), "yes\n", "--remove-categories", "--report", report)
	require.NoError(t, err)

	assert.Contains(t, out, "Successfully deleted 1 Module plugins, 2 child plugins")
	assert.Contains(t, out, "Successfully deleted 1 empty category")
	assert.Equal(t, testutil.Snapshot{}, db.Snapshot())

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Hero")
}

func TestRemoveModulesInvalidVerbosity(t *testing.T) {
	givenSQLiteEnv(t)

	_, err := execute(t, newRemoveModulesCmd(), "", "--verbosity", "3")
	assert.ErrorContains(t, err, "invalid verbosity")
}

func TestRemoveModulesRejectsArguments(t *testing.T) {
	_, err := execute(t, newRemoveModulesCmd(), "", "extra")
	assert.Error(t, err)
}

func TestRemoveModulesMissingDatabaseURL(t *testing.T) {
	givenSQLiteEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, newRemoveModulesCmd(), "", "--force")
	assert.ErrorIs(t, err, remover.ErrUnexpected)
	assert.ErrorContains(t, err, "database URL not found")
}

func TestRemoveModulesDeletionErrorExitsWithError(t *testing.T) {
	db := givenSQLiteEnv(t)
	db.GivenModule("Hero", 0)
	_, err := db.Raw.Exec(`CREATE TRIGGER no_delete BEFORE DELETE ON cms_cmsplugin
		BEGIN SELECT RAISE(ABORT, 'plugins are read only'); END`)
	require.NoError(t, err)
	before := db.Snapshot()

	_, err = execute(t, newRemoveModulesCmd(), "", "--force")
	require.Error(t, err)
	assert.ErrorIs(t, err, remover.ErrDeletion)
	assert.Contains(t, err.Error(), "plugins are read only")
	assert.Equal(t, before, db.Snapshot())
}

func TestRemoveModulesInvalidConfigIsUnexpected(t *testing.T) {
	givenSQLiteEnv(t)
	t.Setenv("CMSMOD_TABLES_MODULES", "x; DROP TABLE y")

	_, err := execute(t, newRemoveModulesCmd(), "", "--force")
	assert.ErrorIs(t, err, remover.ErrUnexpected)
	assert.ErrorContains(t, err, "invalid config")
}

func TestRemoveModulesPaddedAnswerCancels(t *testing.T) {
	db := givenSQLiteEnv(t)
	m := db.GivenModule("Hero", 0)
	db.GivenTextPlugin(m, "<p>hi</p>")
	before := db.Snapshot()

	out, err := execute(t, newRemoveModulesCmd(), " yes\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Operation cancelled.")
	assert.Equal(t, before, db.Snapshot())
}

func TestStatus(t *testing.T) {
	db := givenSQLiteEnv(t)
	m := db.GivenModule("Hero", db.GivenCategory("Heroes"))
	db.GivenChildren(m, 3)
	db.GivenCategory("Unused")

	out, err := execute(t, newStatusCmd(), "")
	require.NoError(t, err)

	assert.Contains(t, out, "Modules:          1")
	assert.Contains(t, out, "Child plugins:    3")
	assert.Contains(t, out, "Categories:       2")
	assert.Contains(t, out, "Empty categories: 1")
	assert.Contains(t, out, "1 category without modules")
}
