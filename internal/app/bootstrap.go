package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"uniform-store/internal/config"
	"uniform-store/internal/core"
	"uniform-store/internal/db"
	"uniform-store/internal/store/postgres"
	"uniform-store/internal/store/sqlite"
	"uniform-store/migrations"
)

// OpenStore opens the backend selected by cfg.Driver. The SQLite schema is brought up to
// date on open; PostgreSQL schemas are managed by Migrate.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (core.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return postgres.New(pool), nil

	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		store := sqlite.New(gdb)
		if err := store.AutoMigrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}

// Migrate brings the configured database schema up to date.
func Migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Driver != config.DriverPostgres {
		store, err := OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		return store.Close()
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	return db.Migrate(ctx, pool, migrations.FS, logger)
}
