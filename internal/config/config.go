package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"
)

type Config struct {
	Version  string   `json:"version" mapstructure:"version"`
	Database Database `json:"database" mapstructure:"database"`
	Tables   Tables   `json:"tables" mapstructure:"tables"`
	Log      Log      `json:"log" mapstructure:"log"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
	Driver   string `json:"driver,omitempty" mapstructure:"driver"` // postgres only: "pgx" (default) or "pq"
}

// Tables names the CMS tables. The defaults match a stock djangocms_modules install.
type Tables struct {
	Plugins    string `json:"plugins" mapstructure:"plugins"`
	Modules    string `json:"modules" mapstructure:"modules"`
	Categories string `json:"categories" mapstructure:"categories"`
	// PluginSubtypes are extra plugin tables keyed on cmsplugin_ptr_id that
	// the schema declares no foreign key for.
	PluginSubtypes []string `json:"plugin_subtypes,omitempty" mapstructure:"plugin_subtypes"`
}

type Log struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// IsIdentifier reports whether name is safe to format into SQL as a table or
// column name.
func IsIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Database.Driver == "" && c.IsPostgres() {
		c.Database.Driver = "pgx"
	}
	if c.Tables.Plugins == "" {
		c.Tables.Plugins = "cms_cmsplugin"
	}
	if c.Tables.Modules == "" {
		c.Tables.Modules = "djangocms_modules_moduleplugin"
	}
	if c.Tables.Categories == "" {
		c.Tables.Categories = "djangocms_modules_category"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) IsPostgres() bool {
	return c.Database.Provider == "postgresql" || c.Database.Provider == "postgres"
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.IsPostgres() && c.Database.Driver != "pgx" && c.Database.Driver != "pq" {
		return fmt.Errorf("unsupported postgres driver: %s. Supported drivers: [pgx pq]", c.Database.Driver)
	}

	tables := map[string]string{
		"tables.plugins":    c.Tables.Plugins,
		"tables.modules":    c.Tables.Modules,
		"tables.categories": c.Tables.Categories,
	}
	for key, name := range tables {
		if !IsIdentifier(name) {
			return fmt.Errorf("%s must be a plain table name, got %q", key, name)
		}
	}
	for _, name := range c.Tables.PluginSubtypes {
		if !IsIdentifier(name) {
			return fmt.Errorf("tables.plugin_subtypes must hold plain table names, got %q", name)
		}
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}

	return nil
}
