// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/application/suggestion"
	"github.com/pantrymatch/server/internal/infrastructure/cache"
	"github.com/pantrymatch/server/internal/infrastructure/config"
	"github.com/pantrymatch/server/internal/infrastructure/http/apiserver"
	"github.com/pantrymatch/server/internal/infrastructure/http/middleware"
	"github.com/pantrymatch/server/internal/infrastructure/monitoring"
	gormRepo "github.com/pantrymatch/server/internal/infrastructure/persistence/gorm"
	"github.com/pantrymatch/server/internal/infrastructure/persistence/postgres"
	"github.com/pantrymatch/server/internal/infrastructure/persistence/sqlite"
	"github.com/pantrymatch/server/internal/ports/inbound"
	"github.com/pantrymatch/server/internal/ports/outbound"
	"github.com/pantrymatch/server/pkg/healthcheck"
	"github.com/pantrymatch/server/pkg/logger"
)

// ConfigFileEnv names the environment variable holding an explicit config
// file path
const ConfigFileEnv = config.EnvPrefix + "_CONFIG_FILE"

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	MonitoringModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigPath is the config file the application was started with
type ConfigPath string

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() ConfigPath {
		return ConfigPath(os.Getenv(ConfigFileEnv))
	},
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Options(
	fx.Provide(
		func(cfg *config.Config) (*logger.Logger, error) {
			return logger.New(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
			})
		},
		func(l *logger.Logger) *zap.Logger {
			return l.Logger
		},
	),
	fx.Invoke(WatchLogLevel),
)

// WatchLogLevel applies log level edits from the config file without a
// restart. Other settings need one. The watcher is not stopped by OnStop and
// keeps running until exit.
func WatchLogLevel(path ConfigPath, l *logger.Logger) error {
	log := l.Named("config")
	watching, err := config.Watch(string(path),
		func(cfg *config.Config) {
			if l.SetLevel(cfg.App.LogLevel) {
				log.Info("Log level changed", zap.Stringer("level", l.Level()))
			}
		},
		func(err error) {
			log.Warn("Ignoring invalid config change", zap.Error(err))
		},
	)
	if err != nil {
		return err
	}
	if watching {
		log.Debug("Watching config file for changes")
	}
	return nil
}

// Database is the open catalogue store. Postgres is nil when running on SQLite.
type Database struct {
	fx.Out

	DB       *gorm.DB
	Postgres *postgres.ConnectionManager
}

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(NewDatabase)

// NewDatabase opens the configured driver and closes it on stop
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (Database, error) {
	ctx := context.Background()

	switch cfg.Database.Driver {
	case "postgres":
		cm, err := postgres.NewConnectionManager(ctx, cfg, log)
		if err != nil {
			return Database{}, fmt.Errorf("failed to setup PostgreSQL database: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return cm.Close()
			},
		})
		return Database{DB: cm.GetDB(), Postgres: cm}, nil

	default:
		db, err := sqlite.SetupDatabase(ctx, cfg.Database, log)
		if err != nil {
			return Database{}, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})
		return Database{DB: db}, nil
	}
}

// CacheModule provides the optional Redis client
var CacheModule = fx.Provide(NewRedis)

// NewRedis connects to Redis when enabled and returns nil otherwise
func NewRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*cache.RedisClient, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

// MonitoringModule provides metrics, tracing, rate limiting and health checks
var MonitoringModule = fx.Provide(
	NewMetrics,
	NewTracing,
	NewLimiter,
	NewHealthCheck,
)

// NewMetrics returns the Prometheus collector, or nil when metrics are off
func NewMetrics(cfg *config.Config, log *zap.Logger) *monitoring.MetricsCollector {
	if !cfg.Monitoring.EnableMetrics {
		return nil
	}
	return monitoring.NewMetricsCollector(log)
}

// NewTracing installs the global tracer provider and flushes it on stop
func NewTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: tp.Shutdown,
	})
	return tp, nil
}

// NewLimiter picks the shared Redis window when configured and the
// in-process token buckets otherwise. It returns nil when rate limiting is off.
func NewLimiter(lc fx.Lifecycle, cfg *config.Config, redis *cache.RedisClient, log *zap.Logger) middleware.Limiter {
	if !cfg.RateLimit.Enable {
		return nil
	}

	if cfg.RateLimit.UseRedis && redis != nil {
		log.Info("Using Redis rate limiter", zap.Int("requests_per_min", cfg.RateLimit.RequestsPerMin))
		return middleware.NewRedisLimiter(redis, cfg.RateLimit)
	}

	limiter := middleware.NewLocalLimiter(cfg.RateLimit)
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go limiter.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return limiter
}

// HealthParams are the dependencies probed by the health endpoints
type HealthParams struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Postgres *postgres.ConnectionManager
	Redis    *cache.RedisClient
}

// NewHealthCheck registers a checker for every backing service in use
func NewHealthCheck(p HealthParams) (*healthcheck.HealthCheck, error) {
	health := healthcheck.New(p.Config.App.Version, p.Logger)

	sqlDB, err := p.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	if p.Redis != nil {
		health.Register("redis", healthcheck.NewRedisChecker(p.Redis.Client()))
	}

	if p.Postgres != nil && p.Postgres.Replicas() > 0 {
		cm := p.Postgres
		// reads fall back to the primary, so a lost replica only degrades
		health.Register("read_replicas", healthcheck.NewCustomChecker("read_replicas",
			func(ctx context.Context) (healthcheck.Status, string, interface{}) {
				meta := map[string]int{"replicas": cm.Replicas()}
				if err := cm.CheckReplicas(ctx); err != nil {
					return healthcheck.StatusDegraded, err.Error(), meta
				}
				return healthcheck.StatusHealthy, "", meta
			},
		))
	}

	return health, nil
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewAliasRepository,
	gormRepo.NewRecipeRepository,
	gormRepo.NewIngredientRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		aliases outbound.AliasRepository,
		recipes outbound.RecipeRepository,
		ingredients outbound.IngredientRepository,
		collector *monitoring.MetricsCollector,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.SuggestionService {
		var metrics outbound.SuggestionMetrics
		if collector != nil {
			metrics = collector
		}
		return suggestion.NewService(aliases, recipes, ingredients, metrics, suggestion.Config{
			CandidateLimit:    cfg.Matching.CandidateLimit,
			DefaultMaxResults: cfg.Matching.DefaultMaxResults,
		}, log)
	},
)

// HTTPModule provides the API server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		log *zap.Logger,
		service inbound.SuggestionService,
		health *healthcheck.HealthCheck,
		metrics *monitoring.MetricsCollector,
		limiter middleware.Limiter,
	) *apiserver.APIServer {
		return apiserver.NewAPIServer(cfg, log, apiserver.Dependencies{
			Service: service,
			Health:  health,
			Metrics: metrics,
			Limiter: limiter,
		})
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	tracing *monitoring.TracingProvider,
	server *apiserver.APIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting PantryMatch",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.Bool("tracing", tracing.Enabled()),
			)
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down PantryMatch")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}
