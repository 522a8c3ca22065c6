// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/infrastructure/config"
	gormModels "github.com/pantrymatch/server/internal/infrastructure/persistence/gorm"
)

// SetupDatabase opens the SQLite database, migrates the schema and, when
// configured, seeds the sample catalogue
func SetupDatabase(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.Database
	// Use in-memory database if no path provided
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormModels.NewLogger(log, cfg.LogLevel, cfg.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// An in-memory database lives as long as its connections, and SQLite
	// serializes writers anyway
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	if cfg.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(gormModels.AllModels()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if cfg.SeedSampleCatalog {
		if err := gormModels.SeedSampleCatalog(ctx, db, log); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	log.Info("SQLite database ready",
		zap.String("dsn", dsn),
		zap.Bool("auto_migrate", cfg.AutoMigrate),
		zap.Bool("seeded", cfg.SeedSampleCatalog),
	)

	return db, nil
}
