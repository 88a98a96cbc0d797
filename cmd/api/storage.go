package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/georgemunganga/catalog-service/internal/modules/audit"
	"github.com/georgemunganga/catalog-service/internal/modules/catalog"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
	"github.com/georgemunganga/catalog-service/internal/platform/config"
	"github.com/georgemunganga/catalog-service/internal/platform/database"
)

// repositories bundles the stores of one storage driver.
type repositories struct {
	products catalog.Repository
	users    user.Repository
	audits   audit.Repository
	close    func() error
}

func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg)
	default:
		return &repositories{
			products: catalog.NewMemoryRepository(),
			users:    user.NewMemoryRepository(),
			audits:   audit.NewMemoryRepository(),
			close:    func() error { return nil },
		}, nil
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repositories, error) {
	if cfg.Migrate {
		if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
	}
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &repositories{
		products: catalog.NewPostgresRepository(db),
		users:    user.NewPostgresRepository(db),
		audits:   audit.NewPostgresRepository(db),
		close:    db.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (*repositories, error) {
	db, err := database.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	repos, err := sqliteRepositories(db)
	if err != nil {
		database.CloseSQLite(db)
		return nil, err
	}
	if err := user.EnsureDefaults(ctx, repos.users); err != nil {
		database.CloseSQLite(db)
		return nil, fmt.Errorf("seed users: %w", err)
	}
	repos.close = func() error { return database.CloseSQLite(db) }
	return repos, nil
}

func sqliteRepositories(db *gorm.DB) (*repositories, error) {
	products, err := catalog.NewSQLiteRepository(db)
	if err != nil {
		return nil, err
	}
	users, err := user.NewSQLiteRepository(db)
	if err != nil {
		return nil, err
	}
	audits, err := audit.NewSQLiteRepository(db)
	if err != nil {
		return nil, err
	}
	return &repositories{products: products, users: users, audits: audits}, nil
}
