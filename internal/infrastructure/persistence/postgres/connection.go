// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/pantrymatch/server/internal/infrastructure/config"
	gormModels "github.com/pantrymatch/server/internal/infrastructure/persistence/gorm"
	"github.com/pantrymatch/server/internal/infrastructure/persistence/migrations"
)

// ConnectionManager manages PostgreSQL database connections and read replicas
type ConnectionManager struct {
	config   *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	writeDB  *sql.DB
	replicas int
}

// NewConnectionManager connects to the primary, registers read replicas,
// applies migrations and optionally seeds the sample catalogue
func NewConnectionManager(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	cm := &ConnectionManager{
		config: cfg,
		logger: log.Named("postgres"),
	}

	if err := cm.initializePrimaryConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	// Replicas are optional; reads fall back to the primary
	if err := cm.initializeReadReplicas(); err != nil {
		cm.logger.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := cm.migrate(ctx); err != nil {
			_ = cm.Close()
			return nil, err
		}
	}

	if cfg.Database.SeedSampleCatalog {
		if err := gormModels.SeedSampleCatalog(ctx, cm.db, cm.logger); err != nil {
			_ = cm.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	cm.logger.Info("Database connection manager initialized",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.Database.ConnMaxLifetime),
		zap.Int("read_replicas", cm.replicas),
	)

	return cm, nil
}

// initializePrimaryConnection sets up the primary database connection
func (cm *ConnectionManager) initializePrimaryConnection(ctx context.Context) error {
	dbCfg := cm.config.Database

	db, err := gorm.Open(postgres.Open(cm.config.GetDSN()), &gorm.Config{
		Logger:                 gormModels.NewLogger(cm.logger, dbCfg.LogLevel, dbCfg.SlowQueryThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dbCfg.ConnMaxIdleTime)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.writeDB = sqlDB
	return nil
}

// initializeReadReplicas routes read queries to the configured replica hosts
func (cm *ConnectionManager) initializeReadReplicas() error {
	hosts := cm.config.Database.ReadReplicas
	if len(hosts) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(hosts))
	for i, host := range hosts {
		replicas[i] = postgres.Open(cm.config.DSNForHost(host))
	}

	resolver := dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(cm.config.Database.MaxOpenConns).
		SetMaxIdleConns(cm.config.Database.MaxIdleConns).
		SetConnMaxLifetime(cm.config.Database.ConnMaxLifetime).
		SetConnMaxIdleTime(cm.config.Database.ConnMaxIdleTime)

	if err := cm.db.Use(resolver); err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	cm.replicas = len(hosts)
	cm.logger.Info("Read replicas configured", zap.Int("replica_count", cm.replicas))
	return nil
}

func (cm *ConnectionManager) migrate(ctx context.Context) error {
	migrator, err := migrations.New(ctx, cm.writeDB, cm.config.Database.Database, cm.logger)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			cm.logger.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GetDB returns the main database connection
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// HealthCheck pings the primary
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.writeDB.PingContext(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}
	return nil
}

// CheckReplicas runs a trivial read through the resolver. Without replicas
// it does nothing.
func (cm *ConnectionManager) CheckReplicas(ctx context.Context) error {
	if cm.replicas == 0 {
		return nil
	}
	var one int
	if err := cm.db.WithContext(ctx).Clauses(dbresolver.Read).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("read replica query failed: %w", err)
	}
	return nil
}

// Replicas returns the number of configured read replicas
func (cm *ConnectionManager) Replicas() int {
	return cm.replicas
}

// SQLDB returns the primary connection pool
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.writeDB
}

// Close closes all database connections
func (cm *ConnectionManager) Close() error {
	if cm.writeDB == nil {
		return nil
	}
	if err := cm.writeDB.Close(); err != nil {
		cm.logger.Error("Failed to close primary database", zap.Error(err))
		return err
	}
	return nil
}
