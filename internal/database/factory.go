package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/Rana718/cmsmod/internal/config"
)

const (
	driverPgx    = "pgx"
	driverPq     = "postgres"
	driverMySQL  = "mysql"
	driverSQLite = "sqlite3"
)

type driverSpec struct {
	name        string
	dsn         string
	placeholder squirrel.PlaceholderFormat
}

func resolveDriver(cfg *config.Config, url string) (driverSpec, error) {
	switch cfg.Database.Provider {
	case "postgresql", "postgres":
		return postgresDriver(cfg.Database.Driver, url), nil
	case "mysql":
		return mysqlDriver(url)
	case "sqlite", "sqlite3":
		return sqliteDriver(url), nil
	default:
		return driverSpec{}, fmt.Errorf("unsupported database provider: %s", cfg.Database.Provider)
	}
}

// Open connects using the URL found in the configured environment variable.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*SQLStore, error) {
	url, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}
	return Connect(ctx, cfg, url, log)
}

func Connect(ctx context.Context, cfg *config.Config, url string, log zerolog.Logger) (*SQLStore, error) {
	spec, err := resolveDriver(cfg, url)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(spec.name, spec.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Database.Provider, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug().Str("provider", cfg.Database.Provider).Str("driver", spec.name).Msg("database connected")
	return NewSQLStore(db, spec.name, spec.placeholder, cfg.Tables, log), nil
}
