// Package app wires the bounded contexts into one running engine.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	gamificationApp "github.com/felixgeelhaar/kafeel/internal/gamification/application"
	gamificationCommands "github.com/felixgeelhaar/kafeel/internal/gamification/application/commands"
	gamificationDomain "github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	insightsApp "github.com/felixgeelhaar/kafeel/internal/insights/application"
	insightsCommands "github.com/felixgeelhaar/kafeel/internal/insights/application/commands"
	sharedApplication "github.com/felixgeelhaar/kafeel/internal/shared/application"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/outbox"
	trackingApp "github.com/felixgeelhaar/kafeel/internal/tracking/application"
	trackingCommands "github.com/felixgeelhaar/kafeel/internal/tracking/application/commands"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/internal/tracking/infrastructure/catalog"
	"github.com/felixgeelhaar/kafeel/internal/tracking/infrastructure/status"
	"github.com/felixgeelhaar/kafeel/pkg/config"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// statusTTL bounds how long a crashed tracker's last status stays visible.
const statusTTL = 10 * time.Minute

// StatusStore publishes and reads the tracker's live status.
type StatusStore interface {
	Publish(ctx context.Context, st trackingDomain.LiveStatus) error
	Latest(ctx context.Context) (*trackingDomain.LiveStatus, error)
}

// Container holds all application dependencies.
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *observability.PrometheusMetrics
	Health   *observability.HealthRegistry
	Location *time.Location

	// Database
	DB         database.Connection
	UnitOfWork sharedApplication.UnitOfWork

	// Redis
	RedisClient *redis.Client

	// Repositories
	Repositories *RepositoryFactory
	OutboxRepo   *outbox.SQLRepository

	// Services
	TrackingService     *trackingApp.Service
	InsightsService     *insightsApp.Service
	GamificationService *gamificationApp.Service

	// Live tracking
	Status  StatusStore
	Tracker *trackingApp.Tracker
}

// NewContainer opens the store, applies migrations, seeds catalog data and
// wires every service. Failure to open or migrate the store is returned.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Metrics:  observability.NewPrometheusMetrics(),
		Health:   observability.NewHealthRegistry(),
		Location: time.Local,
	}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = conn
	logger.Info("connected to database", "driver", conn.Driver().String())

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))

	// Connect to Redis (optional in development)
	if cfg.RedisURL != "" {
		if err := c.connectRedis(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	factory, err := NewRepositoryFactory(conn, c.Location)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Repositories = factory
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = factory.UnitOfWork()

	sessions := factory.SessionRepository()
	scores := factory.DailyScoreRepository()

	c.TrackingService = trackingApp.NewService(factory.CategoryRepository(), c.UnitOfWork)

	scoring := insightsCommands.ScoringConfig{
		ProductiveThreshold: cfg.ProductiveThreshold,
		MinSessionDuration:  cfg.MinSessionDuration,
		Location:            c.Location,
	}
	c.InsightsService = insightsApp.NewService(sessions, c.TrackingService.Resolver(), scores, scoring)

	c.GamificationService = gamificationApp.NewService(gamificationApp.Dependencies{
		Sessions:   sessions,
		Categories: c.TrackingService,
		Scorer:     c.InsightsService,
		Weeks:      c.InsightsService,
		FirstDay:   scores,
		Stores:     factory.GamificationStores(),
		Rules: gamificationCommands.Rules{
			Catalog: gamificationDomain.DefaultCatalog(),
			Curve:   gamificationDomain.NewCurve(cfg.LevelBaseXP),
		},
		Recorder:   outbox.NewRecorder(c.OutboxRepo),
		UnitOfWork: c.UnitOfWork,
		Location:   c.Location,
		Logger:     logger,
		Metrics:    c.Metrics,
	})

	if err := c.seed(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if c.RedisClient != nil {
		c.Status = status.NewRedisStore(c.RedisClient, statusTTL)
	} else {
		c.Status = status.NewMemoryStore()
	}

	c.Tracker = trackingApp.NewTracker(trackingApp.TrackerConfig{
		MinSessionDuration: cfg.MinSessionDuration,
		IdleAppID:          cfg.IdleAppID,
		Location:           c.Location,
	}, c.GamificationService, logger, c.Metrics).
		WithDayCloser(c.GamificationService).
		WithCategories(c.TrackingService).
		WithStatus(c.Status)

	logger.Info("container initialized",
		"driver", conn.Driver().String(),
		"redis", c.RedisClient != nil,
	)
	return c, nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, live status stays in memory", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, live status stays in memory", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

// seed stores the default category catalog, the optional override file and
// a locked row for every achievement.
func (c *Container) seed(ctx context.Context) error {
	defaults, err := catalog.Defaults()
	if err != nil {
		return fmt.Errorf("failed to load default categories: %w", err)
	}

	cmd := trackingCommands.SeedCategoriesCommand{Defaults: defaults}
	if c.Config.CategoriesFile != "" {
		overrides, err := catalog.Load(c.Config.CategoriesFile)
		if err != nil {
			return fmt.Errorf("failed to load categories file: %w", err)
		}
		cmd.Overrides = overrides
	}

	result, err := c.TrackingService.SeedCategories(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	c.Logger.Debug("categories seeded", "seeded", result.Seeded, "overridden", result.Overridden)

	if err := c.GamificationService.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}
	return nil
}

// NewOutboxProcessor creates a processor that delivers to publisher with the
// configured outbox settings.
func (c *Container) NewOutboxProcessor(publisher eventbus.Publisher) *outbox.Processor {
	cfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		cfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		cfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		cfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	cfg.Retention = c.Config.OutboxRetention
	return outbox.NewProcessor(c.OutboxRepo, publisher, cfg, c.Logger, c.Metrics)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.Tracker != nil && c.Tracker.IsRunning() {
		if err := c.Tracker.Stop(context.Background()); err != nil {
			c.Logger.Warn("error stopping tracker", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DB.Driver().String())
		}
	}
}
