package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/config"
	"github.com/creatorlens/creatorlens-go/internal/discovery"
	"github.com/creatorlens/creatorlens-go/internal/handlers"
	"github.com/creatorlens/creatorlens-go/internal/server"
	"github.com/creatorlens/creatorlens-go/internal/service/ai"
	"github.com/creatorlens/creatorlens-go/internal/service/cache"
	"github.com/creatorlens/creatorlens-go/internal/service/database"
	"github.com/creatorlens/creatorlens-go/internal/service/youtube"
	"github.com/creatorlens/creatorlens-go/internal/store"

	"github.com/gin-gonic/gin"
)

// Container bundles the assembled services behind the HTTP surface.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Cache    *cache.CacheService
	Postgres *database.PostgresService
	Router   *gin.Engine

	closers []func()
}

// Close tears down infrastructure in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and the fully-wired router. All
// heavy-weight initialization (DB/cache/AI/platform clients) happens here so
// main stays focused on lifecycle.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache and database
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		Database:        cfg.Postgres.Database,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	if err = postgresSvc.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	snapshotRepo := store.NewSnapshotRepository(postgresSvc, logger)
	videoRepo := store.NewVideoRepository(postgresSvc, logger)
	poolRepo := store.NewDiscoveryCacheRepository(postgresSvc, logger)
	channelStatsRepo := store.NewChannelStatsRepository(postgresSvc, logger)

	// Platform client
	youtubeClient, err := youtube.NewClient(cfg.YouTube.APIKey, cacheSvc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	// Niche resolution
	nicheSvc, err := ai.NewNicheQueryService(ctx, ai.NicheQueryConfig{
		GeminiAPIKey:   cfg.Gemini.APIKey,
		OpenAIAPIKey:   cfg.OpenAI.APIKey,
		EnableFallback: cfg.OpenAI.EnableFallback,
	}, cacheSvc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create niche query service: %w", err)
	}

	orchestrator := discovery.NewOrchestrator(discovery.Deps{
		Platform:     youtubeClient,
		Niche:        nicheSvc,
		Snapshots:    snapshotRepo,
		Videos:       videoRepo,
		PoolStore:    poolRepo,
		HotCache:     cacheSvc,
		ChannelStats: channelStatsRepo,
		Config:       cfg.Discovery,
		Logger:       logger,
	})

	router := server.NewRouter(server.RouterConfig{
		DiscoveryHandler:   handlers.NewDiscoveryHandler(orchestrator, logger),
		CompetitorsHandler: handlers.NewCompetitorsHandler(orchestrator, logger),
		HealthHandler:      handlers.NewHealthHandler(cacheSvc, postgresSvc),
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		Logger:             logger,
	})

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Cache:    cacheSvc,
		Postgres: postgresSvc,
		Router:   router,
		closers:  closers,
	}, nil
}
