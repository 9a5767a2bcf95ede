package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "postgresql", cfg.Database.Provider)
	assert.Equal(t, "DATABASE_URL", cfg.Database.URLEnv)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "cms_cmsplugin", cfg.Tables.Plugins)
	assert.Equal(t, "djangocms_modules_moduleplugin", cfg.Tables.Modules)
	assert.Equal(t, "djangocms_modules_category", cfg.Tables.Categories)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("database.provider", "sqlite")
	viper.Set("database.url_env", "CMS_DB")
	viper.Set("tables.modules", "custom_modules")
	viper.Set("tables.plugin_subtypes", []string{"legacy_picture"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, "CMS_DB", cfg.Database.URLEnv)
	assert.Empty(t, cfg.Database.Driver, "driver only defaults for postgres")
	assert.Equal(t, "custom_modules", cfg.Tables.Modules)
	assert.Equal(t, "cms_cmsplugin", cfg.Tables.Plugins)
	assert.Equal(t, []string{"legacy_picture"}, cfg.Tables.PluginSubtypes)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Database.Provider = "oracle" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "odbc" }},
		{"table with spaces", func(c *Config) { c.Tables.Plugins = "cms plugin" }},
		{"table injection", func(c *Config) { c.Tables.Categories = "x; DROP TABLE y" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"subtype injection", func(c *Config) { c.Tables.PluginSubtypes = []string{"ok", "x; DROP TABLE y"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSchemaQualifiedTableName(t *testing.T) {
	cfg := Default()
	cfg.Tables.Plugins = "public.cms_cmsplugin"
	assert.NoError(t, cfg.Validate())
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := Default()
	cfg.Database.URLEnv = "CMSMOD_TEST_URL"

	t.Setenv("CMSMOD_TEST_URL", "")
	_, err := cfg.GetDatabaseURL()
	assert.Error(t, err)

	t.Setenv("CMSMOD_TEST_URL", "sqlite://cms.db")
	url, err := cfg.GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://cms.db", url)
}
