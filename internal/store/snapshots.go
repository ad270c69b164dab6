package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/service/database"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// SnapshotRepository is the append-only record of observed video stats and the
// only source of truth for velocity derivation. Rows are never updated or
// deleted.
type SnapshotRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSnapshotRepository(postgres *database.PostgresService, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *SnapshotRepository) Insert(ctx context.Context, snapshot *domain.VideoSnapshot) error {
	query := `
		INSERT INTO video_snapshots (video_id, view_count, like_count, comment_count, captured_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		snapshot.VideoID,
		snapshot.ViewCount,
		nullableInt64(snapshot.LikeCount),
		nullableInt64(snapshot.CommentCount),
		snapshot.CapturedAt,
	)
	if err != nil {
		return errors.NewStorageError("failed to insert snapshot", "video_snapshots", "insert", err)
	}

	return nil
}

// History returns a video's snapshots newest-first, capped at limit.
func (r *SnapshotRepository) History(ctx context.Context, videoID string, limit int) ([]*domain.VideoSnapshot, error) {
	query := `
		SELECT video_id, view_count, like_count, comment_count, captured_at
		FROM video_snapshots
		WHERE video_id = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, videoID, limit)
	if err != nil {
		return nil, errors.NewStorageError("failed to query snapshot history", "video_snapshots", "select", err)
	}
	defer rows.Close()

	var snapshots []*domain.VideoSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to iterate snapshot history", "video_snapshots", "select", err)
	}

	return snapshots, nil
}

// HistoryBatch loads newest-first histories for many videos in one round trip.
func (r *SnapshotRepository) HistoryBatch(ctx context.Context, videoIDs []string, perVideoLimit int) (map[string][]*domain.VideoSnapshot, error) {
	if len(videoIDs) == 0 {
		return map[string][]*domain.VideoSnapshot{}, nil
	}

	query := `
		SELECT video_id, view_count, like_count, comment_count, captured_at
		FROM (
			SELECT video_id, view_count, like_count, comment_count, captured_at,
			       row_number() OVER (PARTITION BY video_id ORDER BY captured_at DESC) AS rn
			FROM video_snapshots
			WHERE video_id = ANY($1)
		) ranked
		WHERE rn <= $2
		ORDER BY video_id, captured_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(videoIDs), perVideoLimit)
	if err != nil {
		return nil, errors.NewStorageError("failed to query snapshot batch", "video_snapshots", "select", err)
	}
	defer rows.Close()

	result := make(map[string][]*domain.VideoSnapshot, len(videoIDs))
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result[snapshot.VideoID] = append(result[snapshot.VideoID], snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to iterate snapshot batch", "video_snapshots", "select", err)
	}

	return result, nil
}

// LatestCapturedAt returns each video's most recent snapshot time. Videos with
// no snapshots are absent from the map.
func (r *SnapshotRepository) LatestCapturedAt(ctx context.Context, videoIDs []string) (map[string]time.Time, error) {
	if len(videoIDs) == 0 {
		return map[string]time.Time{}, nil
	}

	query := `
		SELECT video_id, max(captured_at)
		FROM video_snapshots
		WHERE video_id = ANY($1)
		GROUP BY video_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(videoIDs))
	if err != nil {
		return nil, errors.NewStorageError("failed to query latest capture times", "video_snapshots", "select", err)
	}
	defer rows.Close()

	result := make(map[string]time.Time, len(videoIDs))
	for rows.Next() {
		var videoID string
		var capturedAt time.Time
		if err := rows.Scan(&videoID, &capturedAt); err != nil {
			return nil, errors.NewStorageError("failed to scan capture time", "video_snapshots", "select", err)
		}
		result[videoID] = capturedAt
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to iterate capture times", "video_snapshots", "select", err)
	}

	return result, nil
}

type snapshotScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row snapshotScanner) (*domain.VideoSnapshot, error) {
	var (
		snapshot     domain.VideoSnapshot
		likeCount    sql.NullInt64
		commentCount sql.NullInt64
	)

	if err := row.Scan(&snapshot.VideoID, &snapshot.ViewCount, &likeCount, &commentCount, &snapshot.CapturedAt); err != nil {
		return nil, errors.NewStorageError("failed to scan snapshot", "video_snapshots", "select", err)
	}

	if likeCount.Valid {
		snapshot.LikeCount = &likeCount.Int64
	}
	if commentCount.Valid {
		snapshot.CommentCount = &commentCount.Int64
	}

	return &snapshot, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
