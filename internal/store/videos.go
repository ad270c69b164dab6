package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/service/database"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
	"go.uber.org/zap"
)

// VideoRepository keeps the identity of every discovered video. Rows are
// upserted on each re-discovery and never hard-deleted; the snapshot history
// outlives the video's presence in search results.
type VideoRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewVideoRepository(postgres *database.PostgresService, logger *zap.Logger) *VideoRepository {
	return &VideoRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *VideoRepository) Upsert(ctx context.Context, video *domain.RawVideo, now time.Time) error {
	query := `
		INSERT INTO competitor_videos
			(video_id, channel_id, title, channel_title, thumbnail_url, channel_thumbnail_url,
			 published_at, duration_sec, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (video_id) DO UPDATE SET
			title                 = EXCLUDED.title,
			channel_title         = EXCLUDED.channel_title,
			thumbnail_url         = EXCLUDED.thumbnail_url,
			channel_thumbnail_url = EXCLUDED.channel_thumbnail_url,
			duration_sec          = COALESCE(EXCLUDED.duration_sec, competitor_videos.duration_sec),
			last_seen_at          = EXCLUDED.last_seen_at
	`

	_, err := r.db.ExecContext(ctx, query,
		video.VideoID,
		video.ChannelID,
		video.Title,
		video.ChannelTitle,
		video.ThumbnailURL,
		video.ChannelThumbnailURL,
		video.PublishedAt,
		nullableInt64(video.DurationSec),
		now,
	)
	if err != nil {
		return errors.NewStorageError("failed to upsert video", "competitor_videos", "upsert", err)
	}

	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, videoID string) (*domain.RawVideo, error) {
	query := `
		SELECT video_id, channel_id, title, channel_title,
		       COALESCE(thumbnail_url, ''), COALESCE(channel_thumbnail_url, ''),
		       published_at, duration_sec
		FROM competitor_videos
		WHERE video_id = $1
		LIMIT 1
	`

	var (
		video       domain.RawVideo
		durationSec sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, query, videoID).Scan(
		&video.VideoID, &video.ChannelID, &video.Title, &video.ChannelTitle,
		&video.ThumbnailURL, &video.ChannelThumbnailURL,
		&video.PublishedAt, &durationSec,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to query video", "competitor_videos", "select", err)
	}

	if durationSec.Valid {
		video.DurationSec = &durationSec.Int64
	}

	return &video, nil
}
