// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/infrastructure/config"
	gormModels "github.com/pantrymatch/server/internal/infrastructure/persistence/gorm"
	"github.com/pantrymatch/server/internal/infrastructure/persistence/postgres"
)

const postgresPort = nat.Port("5432/tcp")

// TestDatabase is a migrated PostgreSQL catalogue running in a container
type TestDatabase struct {
	Container testcontainers.Container
	Manager   *postgres.ConnectionManager
	GormDB    *gorm.DB
	Config    *config.Config
	t         *testing.T
}

// DatabaseConfig holds test database configuration
type DatabaseConfig struct {
	Image    string
	Database string
	Username string
	Password string
}

// DefaultDatabaseConfig returns the default test database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:    "postgres:15-alpine",
		Database: "pantrymatch_test",
		Username: "test_user",
		Password: "test_password",
	}
}

// SetupTestDatabase starts PostgreSQL, applies the migrations and seeds the
// sample catalogue
func SetupTestDatabase(t *testing.T) *TestDatabase {
	return SetupTestDatabaseWithConfig(t, DefaultDatabaseConfig())
}

// SetupTestDatabaseWithConfig creates a test database with custom configuration
func SetupTestDatabaseWithConfig(t *testing.T, cfg DatabaseConfig) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        cfg.Image,
				ExposedPorts: []string{string(postgresPort)},
				Env: map[string]string{
					"POSTGRES_DB":       cfg.Database,
					"POSTGRES_USER":     cfg.Username,
					"POSTGRES_PASSWORD": cfg.Password,
				},
				WaitingFor: wait.ForAll(
					wait.ForLog("database system is ready to accept connections").
						WithOccurrence(2).
						WithStartupTimeout(60*time.Second),
					wait.ForSQL(postgresPort, "pgx", func(host string, port nat.Port) string {
						return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
							cfg.Username, cfg.Password, host, port.Port(), cfg.Database)
					}),
				),
				Tmpfs: map[string]string{
					"/var/lib/postgresql/data": "rw,noexec,nosuid,size=512m",
				},
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start postgres container")

	td := &TestDatabase{Container: container, t: t}
	t.Cleanup(td.Cleanup)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, postgresPort)
	require.NoError(t, err)

	td.Config = &config.Config{
		Database: config.DatabaseConfig{
			Driver:            "postgres",
			Host:              host,
			Port:              port.Int(),
			Database:          cfg.Database,
			Username:          cfg.Username,
			Password:          cfg.Password,
			SSLMode:           "disable",
			MaxOpenConns:      10,
			MaxIdleConns:      5,
			ConnMaxLifetime:   time.Hour,
			LogLevel:          "silent",
			AutoMigrate:       true,
			SeedSampleCatalog: true,
		},
	}

	td.Manager, err = postgres.NewConnectionManager(ctx, td.Config, zap.NewNop())
	require.NoError(t, err, "Failed to connect to test database")
	td.GormDB = td.Manager.GetDB()

	return td
}

// TruncateCatalog removes every ingredient and recipe
func (td *TestDatabase) TruncateCatalog() error {
	return td.GormDB.Exec(`TRUNCATE TABLE recipe_ingredients, recipe_steps, recipes, ingredient_aliases, ingredients CASCADE`).Error
}

// SeedCatalog replaces the catalogue with the given ingredients and recipes
func (td *TestDatabase) SeedCatalog(ingredients []pantry.Ingredient, recipes []*pantry.Recipe) error {
	if err := td.TruncateCatalog(); err != nil {
		return fmt.Errorf("failed to truncate catalogue: %w", err)
	}
	values := make([]pantry.Recipe, len(recipes))
	for i, r := range recipes {
		values[i] = *r
	}
	return gormModels.SeedCatalog(context.Background(), td.GormDB, ingredients, values, zap.NewNop())
}

// Cleanup closes all connections and stops the container
func (td *TestDatabase) Cleanup() {
	if td.Manager != nil {
		_ = td.Manager.Close()
	}

	if td.Container != nil {
		if err := td.Container.Terminate(context.Background()); err != nil {
			td.t.Logf("Failed to terminate postgres container: %v", err)
		}
	}
}
