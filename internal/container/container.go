package container

import (
	"context"

	"katalyst-be/internal/config"
	"katalyst-be/internal/repository"
	"katalyst-be/internal/service"
	"katalyst-be/pkg/database"
	"katalyst-be/pkg/logger"
	"katalyst-be/pkg/redis"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container. Postgres is required;
// Redis is optional and the app degrades to uncached reads without it.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("postgres connection pool initialized")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("redis client initialized")
		}
	} else {
		log.Info("redis URL not configured, proceeding without caching")
	}

	repos := &repository.Repositories{
		Event:     repository.NewEventRepository(db),
		Lead:      repository.NewLeadRepository(db),
		Analytics: repository.NewAnalyticsRepository(db),
	}

	cache := service.NewCacheService(redisClient, log.Logger)

	services := &service.Services{
		Event:     service.NewEventService(repos.Event, repos.Lead, cache, log.Logger),
		Lead:      service.NewLeadService(repos.Lead, repos.Event, cache, log.Logger),
		Analytics: service.NewAnalyticsService(repos.Analytics, repos.Event, repos.Lead, cache, log.Logger),
		Export:    service.NewExportService(repos.Lead, log.Logger),
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
	}, nil
}

// Close releases the container's connections
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
	c.DB.Close()
}

// GetLogger returns the logger
func (c *Container) GetLogger() *zap.Logger {
	return c.Logger.Logger
}

// HasRedis returns true if the Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
