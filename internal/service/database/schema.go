package database

import (
	"context"

	"go.uber.org/zap"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS competitor_videos (
		video_id              TEXT PRIMARY KEY,
		channel_id            TEXT NOT NULL,
		title                 TEXT NOT NULL,
		channel_title         TEXT NOT NULL,
		thumbnail_url         TEXT,
		channel_thumbnail_url TEXT,
		published_at          TIMESTAMPTZ NOT NULL,
		duration_sec          BIGINT,
		first_seen_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_competitor_videos_channel
		ON competitor_videos (channel_id)`,

	`CREATE TABLE IF NOT EXISTS video_snapshots (
		id            BIGSERIAL PRIMARY KEY,
		video_id      TEXT NOT NULL,
		view_count    BIGINT NOT NULL,
		like_count    BIGINT,
		comment_count BIGINT,
		captured_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_video_snapshots_video_captured
		ON video_snapshots (video_id, captured_at DESC)`,

	`CREATE TABLE IF NOT EXISTS discovery_cache (
		user_id      TEXT NOT NULL,
		channel_id   TEXT NOT NULL,
		range_key    TEXT NOT NULL,
		videos_json  JSONB NOT NULL,
		cached_until TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, channel_id, range_key)
	)`,

	`CREATE TABLE IF NOT EXISTS channel_stats_history (
		id               BIGSERIAL PRIMARY KEY,
		channel_id       TEXT NOT NULL,
		channel_title    TEXT NOT NULL,
		subscriber_count BIGINT NOT NULL,
		video_count      BIGINT NOT NULL,
		view_count       BIGINT NOT NULL,
		fetched_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_stats_history_channel
		ON channel_stats_history (channel_id, fetched_at DESC)`,
}

// Migrate bootstraps the schema. Statements are idempotent so this runs on
// every startup.
func (ps *PostgresService) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := ps.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	ps.logger.Info("Database schema ready", zap.Int("statements", len(schemaStatements)))
	return nil
}
