package discovery

import (
	"context"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

// Platform is the slice of the video-platform client the orchestrator needs.
// *youtube.Client satisfies it; tests substitute scripted fakes.
type Platform interface {
	SearchSimilarChannels(ctx context.Context, keywords []string, limit int64) ([]*domain.ChannelSummary, error)
	SearchNicheVideos(ctx context.Context, query string, publishedAfter time.Time, pageToken string, limit int64) (*domain.NichePage, error)
	FetchRecentChannelVideos(ctx context.Context, channelID string, publishedAfter time.Time, maxCount int64) ([]*domain.RawVideo, error)
	FetchVideosStatsBatch(ctx context.Context, videoIDs []string) (map[string]*domain.VideoStats, error)
	FetchChannelStats(ctx context.Context, channelIDs []string) (map[string]*domain.ChannelStats, error)
}

// NicheResolver turns channel signals into a set of search queries.
type NicheResolver interface {
	GenerateNicheQueries(ctx context.Context, channelID string, signals domain.NicheSignals) (*domain.NicheQueries, error)
}

// SnapshotStore persists append-only stats snapshots.
type SnapshotStore interface {
	Insert(ctx context.Context, snapshot *domain.VideoSnapshot) error
	HistoryBatch(ctx context.Context, videoIDs []string, perVideoLimit int) (map[string][]*domain.VideoSnapshot, error)
	LatestCapturedAt(ctx context.Context, videoIDs []string) (map[string]time.Time, error)
}

// VideoStore persists descriptive video rows.
type VideoStore interface {
	Upsert(ctx context.Context, video *domain.RawVideo, now time.Time) error
	FindByID(ctx context.Context, videoID string) (*domain.RawVideo, error)
}

// PoolStore is the durable discovery-pool cache keyed by user, channel and
// range key.
type PoolStore interface {
	Get(ctx context.Context, userID, channelID, rangeKey string, maxPerChannel int, now time.Time) ([]*domain.RawVideo, bool, error)
	Put(ctx context.Context, userID, channelID, rangeKey string, videos []*domain.RawVideo, ttl time.Duration, now time.Time) error
	CachedUntil(ctx context.Context, userID, channelID, rangeKey string) (time.Time, bool, error)
}

// HotPoolCache is the short-TTL redis layer in front of PoolStore.
type HotPoolCache interface {
	GetDiscoveryPool(ctx context.Context, cacheKey string) ([]*domain.RawVideo, bool)
	SetDiscoveryPool(ctx context.Context, cacheKey string, videos []*domain.RawVideo, ttl time.Duration)
}

// ChannelStatsStore keeps the per-channel stats history used for subscriber
// proximity and listing descriptions.
type ChannelStatsStore interface {
	Save(ctx context.Context, stats *domain.ChannelStats) error
	Latest(ctx context.Context, channelID string) (*domain.ChannelStats, error)
}
