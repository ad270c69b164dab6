package store

import (
	"context"
	"database/sql"

	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/service/database"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
	"go.uber.org/zap"
)

// ChannelStatsRepository records subscriber counts over time for channels the
// engine has looked at, mirroring the snapshot model at channel granularity.
type ChannelStatsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewChannelStatsRepository(postgres *database.PostgresService, logger *zap.Logger) *ChannelStatsRepository {
	return &ChannelStatsRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *ChannelStatsRepository) Save(ctx context.Context, stats *domain.ChannelStats) error {
	query := `
		INSERT INTO channel_stats_history
			(channel_id, channel_title, subscriber_count, video_count, view_count, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		stats.ChannelID,
		stats.ChannelTitle,
		stats.SubscriberCount,
		stats.VideoCount,
		stats.ViewCount,
		stats.FetchedAt,
	)
	if err != nil {
		return errors.NewStorageError("failed to save channel stats", "channel_stats_history", "insert", err)
	}

	return nil
}

func (r *ChannelStatsRepository) Latest(ctx context.Context, channelID string) (*domain.ChannelStats, error) {
	query := `
		SELECT channel_id, channel_title, subscriber_count, video_count, view_count, fetched_at
		FROM channel_stats_history
		WHERE channel_id = $1
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var stats domain.ChannelStats
	err := r.db.QueryRowContext(ctx, query, channelID).Scan(
		&stats.ChannelID, &stats.ChannelTitle, &stats.SubscriberCount,
		&stats.VideoCount, &stats.ViewCount, &stats.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to query channel stats", "channel_stats_history", "select", err)
	}

	return &stats, nil
}
