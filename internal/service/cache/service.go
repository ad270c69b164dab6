package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService is the hot layer in front of Postgres: niche-query results,
// channel stats and recently-read discovery pools live here. Everything in it
// is regenerable, so failures are logged and reported but callers are expected
// to treat them as misses.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

const (
	nicheQueriesKeyPrefix  = "creatorlens:niche_queries:"
	discoveryPoolKeyPrefix = "creatorlens:discovery_pool:"
	channelStatsKeyPrefix  = "creatorlens:channel_stats:"
)

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// Get unmarshals the cached value into dest. A missing key is not an error;
// dest is left untouched and nil is returned.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Error("Cache exists failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("exists failed", "exists", key, err)
	}
	return count > 0, nil
}

func (c *CacheService) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		c.logger.Error("Cache expire failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("expire failed", "expire", key, err)
	}
	return nil
}

// GetNicheQueries returns the cached rotating query list for a channel.
// Query generation is not time-sensitive, so the entry lives for a day.
func (c *CacheService) GetNicheQueries(ctx context.Context, channelID string) (*domain.NicheQueries, bool) {
	var queries domain.NicheQueries
	found, err := c.Get(ctx, nicheQueriesKeyPrefix+channelID, &queries)
	if err != nil || !found {
		return nil, false
	}
	if len(queries.Queries) == 0 {
		return nil, false
	}
	return &queries, true
}

func (c *CacheService) SetNicheQueries(ctx context.Context, channelID string, queries *domain.NicheQueries, ttl time.Duration) {
	if err := c.Set(ctx, nicheQueriesKeyPrefix+channelID, queries, ttl); err != nil {
		c.logger.Warn("Failed to cache niche queries", zap.String("channel", channelID), zap.Error(err))
	}
}

// GetDiscoveryPool reads a hot copy of a raw candidate pool. The durable copy
// lives in Postgres; this layer only shortcuts repeated reads of the same key.
func (c *CacheService) GetDiscoveryPool(ctx context.Context, cacheKey string) ([]*domain.RawVideo, bool) {
	var videos []*domain.RawVideo
	found, err := c.Get(ctx, discoveryPoolKeyPrefix+cacheKey, &videos)
	if err != nil || !found || videos == nil {
		return nil, false
	}
	return videos, true
}

func (c *CacheService) SetDiscoveryPool(ctx context.Context, cacheKey string, videos []*domain.RawVideo, ttl time.Duration) {
	if err := c.Set(ctx, discoveryPoolKeyPrefix+cacheKey, videos, ttl); err != nil {
		c.logger.Warn("Failed to cache discovery pool", zap.String("key", cacheKey), zap.Error(err))
	}
}

func (c *CacheService) GetChannelStats(ctx context.Context, channelID string) (*domain.ChannelStats, bool) {
	var stats domain.ChannelStats
	found, err := c.Get(ctx, channelStatsKeyPrefix+channelID, &stats)
	if err != nil || !found {
		return nil, false
	}
	return &stats, true
}

func (c *CacheService) SetChannelStats(ctx context.Context, channelID string, stats *domain.ChannelStats, ttl time.Duration) {
	if err := c.Set(ctx, channelStatsKeyPrefix+channelID, stats, ttl); err != nil {
		c.logger.Warn("Failed to cache channel stats", zap.String("channel", channelID), zap.Error(err))
	}
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) GetRedisClient() *redis.Client {
	return c.client
}
