package discovery

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
)

// scanResult is one page worth of rotation output.
type scanResult struct {
	videos     []*domain.RawVideo
	seen       map[string]struct{}
	scanned    int
	nextCursor *domain.SearchCursor
	exhausted  bool
}

// rotation pulls candidate videos from a fixed query list, one platform page
// per query, resuming from a cursor. A single scan keeps pulling pages until
// the target count is met or every query has been tried once this pass.
type rotation struct {
	platform Platform
	queries  []string
	logger   *zap.Logger
}

func newRotation(platform Platform, queries []string, logger *zap.Logger) *rotation {
	return &rotation{platform: platform, queries: queries, logger: logger}
}

// scan fetches until target new (unseen) videos are collected or the query
// list is spent. The returned cursor resumes the rotation; nil means the pool
// is exhausted for this query set.
func (r *rotation) scan(ctx context.Context, cursor *domain.SearchCursor, target int, publishedAfter time.Time, pageSize int64) (*scanResult, error) {
	queryCount := len(r.queries)
	if queryCount == 0 {
		return &scanResult{seen: map[string]struct{}{}, exhausted: true}, nil
	}

	queryIndex := 0
	pageToken := ""
	scanned := 0
	seen := map[string]struct{}{}
	if cursor != nil {
		queryIndex = cursor.QueryIndex % queryCount
		pageToken = cursor.PageToken
		scanned = cursor.ScannedCount
		seen = cursor.SeenSet()
	}

	result := &scanResult{seen: seen}
	sawMorePages := false

	for tried := 0; tried < queryCount; tried++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		query := r.queries[queryIndex]
		page, err := r.platform.SearchNicheVideos(ctx, query, publishedAfter, pageToken, pageSize)
		if err != nil {
			return nil, err
		}

		for _, video := range page.Videos {
			scanned++
			if _, dup := seen[video.VideoID]; dup {
				continue
			}
			seen[video.VideoID] = struct{}{}
			result.videos = append(result.videos, video)
		}

		if page.NextPageToken != "" {
			sawMorePages = true
		}

		if len(result.videos) >= target {
			// Rotate to the next query; a single-query list paginates deep
			// instead.
			next := (queryIndex + 1) % queryCount
			nextToken := ""
			if queryCount == 1 {
				nextToken = page.NextPageToken
			}
			result.scanned = scanned
			result.nextCursor = &domain.SearchCursor{
				QueryIndex:   next,
				PageToken:    nextToken,
				SeenIDs:      capSeenIDs(seen),
				ScannedCount: scanned,
			}
			return result, nil
		}

		queryIndex = (queryIndex + 1) % queryCount
		pageToken = ""
	}

	// Full pass over the query list without filling the page. The pool is
	// exhausted once a whole rotation yields nothing new, or no query has a
	// further page.
	result.scanned = scanned
	if len(result.videos) == 0 || !sawMorePages {
		r.logger.Debug("query rotation exhausted",
			zap.Int("queries", queryCount),
			zap.Int("scanned", scanned))
		result.exhausted = true
		return result, nil
	}
	result.nextCursor = &domain.SearchCursor{
		QueryIndex:   queryIndex,
		PageToken:    "",
		SeenIDs:      capSeenIDs(seen),
		ScannedCount: scanned,
	}
	return result, nil
}

// capSeenIDs flattens the seen set into a bounded, deterministic slice so the
// cursor stays well under header and URL size limits.
func capSeenIDs(seen map[string]struct{}) []string {
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > constants.DiscoveryConfig.MaxSeenIDs {
		ids = ids[len(ids)-constants.DiscoveryConfig.MaxSeenIDs:]
	}
	return ids
}
