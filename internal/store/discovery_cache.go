package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/service/database"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
	"go.uber.org/zap"
)

// poolEnvelope versions the serialized candidate pool so field additions do
// not silently break entries written by older code. Unknown versions decode
// as a miss and the pool is refetched.
type poolEnvelope struct {
	Version int                `json:"v"`
	Videos  []*domain.RawVideo `json:"videos"`
}

const poolVersion = 1

// DiscoveryCacheRepository is the durable time-boxed cache of raw candidate
// pools keyed by (user, channel, rangeKey). Content is idempotently
// regenerable, so the upsert is last-writer-wins.
type DiscoveryCacheRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewDiscoveryCacheRepository(postgres *database.PostgresService, logger *zap.Logger) *DiscoveryCacheRepository {
	return &DiscoveryCacheRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// Get returns the cached pool, or a miss when the entry is absent, expired, or
// undecodable. maxPerChannel is enforced at read time so entries written
// before the cap existed still honor it.
func (r *DiscoveryCacheRepository) Get(ctx context.Context, userID, channelID, rangeKey string, maxPerChannel int, now time.Time) ([]*domain.RawVideo, bool, error) {
	query := `
		SELECT videos_json, cached_until
		FROM discovery_cache
		WHERE user_id = $1 AND channel_id = $2 AND range_key = $3
		LIMIT 1
	`

	var (
		videosJSON  []byte
		cachedUntil time.Time
	)

	err := r.db.QueryRowContext(ctx, query, userID, channelID, rangeKey).Scan(&videosJSON, &cachedUntil)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStorageError("failed to query discovery cache", "discovery_cache", "select", err)
	}

	if !cachedUntil.After(now) {
		return nil, false, nil
	}

	var envelope poolEnvelope
	if err := json.Unmarshal(videosJSON, &envelope); err != nil {
		r.logger.Warn("Undecodable discovery cache payload, treating as miss",
			zap.String("user", userID),
			zap.String("channel", channelID),
			zap.String("range_key", rangeKey),
			zap.Error(err))
		return nil, false, nil
	}
	if envelope.Version != poolVersion {
		r.logger.Warn("Discovery cache payload version mismatch, treating as miss",
			zap.Int("version", envelope.Version),
			zap.Int("expected", poolVersion))
		return nil, false, nil
	}

	return capPerChannel(envelope.Videos, maxPerChannel), true, nil
}

// Put atomically upserts the pool for its composite key. Concurrent writers
// for the same key race benignly; the cache regenerates identically.
func (r *DiscoveryCacheRepository) Put(ctx context.Context, userID, channelID, rangeKey string, videos []*domain.RawVideo, ttl time.Duration, now time.Time) error {
	payload, err := json.Marshal(poolEnvelope{Version: poolVersion, Videos: videos})
	if err != nil {
		return errors.NewStorageError("failed to marshal discovery pool", "discovery_cache", "upsert", err)
	}

	query := `
		INSERT INTO discovery_cache (user_id, channel_id, range_key, videos_json, cached_until, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, channel_id, range_key) DO UPDATE SET
			videos_json  = EXCLUDED.videos_json,
			cached_until = EXCLUDED.cached_until,
			updated_at   = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, userID, channelID, rangeKey, payload, now.Add(ttl), now)
	if err != nil {
		return errors.NewStorageError("failed to upsert discovery cache", "discovery_cache", "upsert", err)
	}

	return nil
}

// CachedUntil reports the expiry of an entry without decoding its payload.
func (r *DiscoveryCacheRepository) CachedUntil(ctx context.Context, userID, channelID, rangeKey string) (time.Time, bool, error) {
	query := `
		SELECT cached_until
		FROM discovery_cache
		WHERE user_id = $1 AND channel_id = $2 AND range_key = $3
		LIMIT 1
	`

	var cachedUntil time.Time
	err := r.db.QueryRowContext(ctx, query, userID, channelID, rangeKey).Scan(&cachedUntil)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.NewStorageError("failed to query cache expiry", "discovery_cache", "select", err)
	}

	return cachedUntil, true, nil
}

func capPerChannel(videos []*domain.RawVideo, maxPerChannel int) []*domain.RawVideo {
	if maxPerChannel <= 0 {
		return videos
	}

	perChannel := make(map[string]int)
	result := make([]*domain.RawVideo, 0, len(videos))
	for _, video := range videos {
		if perChannel[video.ChannelID] >= maxPerChannel {
			continue
		}
		perChannel[video.ChannelID]++
		result = append(result, video)
	}

	return result
}
