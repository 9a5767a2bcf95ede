package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/cmsmod/internal/config"
	"github.com/Rana718/cmsmod/internal/database"
	"github.com/Rana718/cmsmod/internal/logger"
	"github.com/Rana718/cmsmod/internal/remover"
)

var (
	cfgFile string
	Version = "1.0.0"
)

// configKeys are bound to CMSMOD_* environment variables so they apply
// without a config file.
var configKeys = []string{
	"database.provider", "database.url_env", "database.driver",
	"tables.plugins", "tables.modules", "tables.categories", "tables.plugin_subtypes",
	"log.level", "log.format",
}

var rootCmd = &cobra.Command{
	Use:   "cmsmod",
	Short: "Maintenance commands for djangocms Module plugins",
	Long: `
cmsmod works directly on the database of a django CMS site that uses
djangocms_modules. It can report how many Module plugins, child plugins and
module categories exist, and remove them in bulk.

Database Support:
- PostgreSQL (pgx or lib/pq driver)
- MySQL
- SQLite`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "cmsmod version %s\n", Version)
			return
		}
		color.New(color.FgCyan, color.Bold).Fprintf(cmd.OutOrStdout(), "cmsmod %s\n\n", Version)
		cmd.Help()
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cmsmod.config.json)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("cmsmod.config")
	}

	viper.SetEnvPrefix("CMSMOD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range configKeys {
		viper.BindEnv(key)
	}

	// a missing config file is fine, every setting has a default
	_ = viper.ReadInConfig()
}

// openStore loads config, builds the diagnostic logger and connects. Its
// failures happen before any deletion, so they are unexpected errors.
func openStore(ctx context.Context) (*database.SQLStore, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("%w: failed to load config: %w", remover.ErrUnexpected, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("%w: invalid config: %w", remover.ErrUnexpected, err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	store, err := database.Open(ctx, cfg, log)
	if err != nil {
		return nil, log, fmt.Errorf("%w: failed to connect to database: %w", remover.ErrUnexpected, err)
	}
	return store, log, nil
}
