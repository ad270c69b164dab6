package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
)

// ListRequest is one page of the non-streaming competitor listing.
type ListRequest struct {
	UserID    string
	ChannelID string
	Range     string
	Sort      string
	Offset    int
	Limit     int
}

// ListResponse is the listing page. NextCursor is the numeric offset of the
// following page, absent on the last one.
type ListResponse struct {
	Videos                []*domain.CompetitorVideo `json:"videos"`
	Total                 int                       `json:"total"`
	NextCursor            *int                      `json:"nextCursor,omitempty"`
	CachedUntil           *time.Time                `json:"cachedUntil,omitempty"`
	TargetSizeDescription string                    `json:"targetSizeDescription,omitempty"`
	GeneratedAt           time.Time                 `json:"generatedAt"`
}

// ListCompetitors serves the offset-paginated competitor listing for a
// channel. The candidate pool is built once per range via the same discovery
// path as streaming search, then ranked and sliced per request.
func (o *Orchestrator) ListCompetitors(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	filters, err := listingFilters(req)
	if err != nil {
		return nil, err
	}
	if req.Offset < 0 {
		return nil, errors.NewValidationError("offset must be >= 0", "offset", req.Offset)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = constants.ListingConfig.DefaultLimit
	}
	if limit > constants.ListingConfig.MaxLimit {
		limit = constants.ListingConfig.MaxLimit
	}

	queries, err := o.resolveQueries(ctx, &SearchRequest{
		Mode:      ModeCompetitorSearch,
		UserID:    req.UserID,
		ChannelID: req.ChannelID,
	})
	if err != nil {
		return nil, err
	}
	if len(queries.Queries) == 0 {
		return &ListResponse{Videos: []*domain.CompetitorVideo{}, GeneratedAt: o.now()}, nil
	}

	poolKey := MakeCacheKey(string(ModeCompetitorSearch), queries.Niche, queries.Queries, filters)
	rangeKey := makeRangeKey(filters.DateRange, poolKey, 0)
	searchReq := &SearchRequest{Mode: ModeCompetitorSearch, UserID: req.UserID, ChannelID: req.ChannelID, Filters: filters}

	raw, cacheHit := o.readPool(ctx, searchReq, rangeKey)
	if !cacheHit {
		raw, err = o.discoverByChannels(ctx, searchReq, queries.Queries)
		if err != nil {
			return nil, err
		}
		raw = excludeChannel(raw, req.ChannelID)
		raw = capPerChannel(raw, o.cfg.VideosPerChannel)
		o.writePool(ctx, searchReq, rangeKey, raw)
	}

	o.captureSnapshots(ctx, raw)
	ranked := o.rank(ctx, raw, filters)

	resp := &ListResponse{Total: len(ranked), GeneratedAt: o.now()}

	if req.Offset < len(ranked) {
		end := req.Offset + limit
		if end > len(ranked) {
			end = len(ranked)
		}
		resp.Videos = ranked[req.Offset:end]
		if end < len(ranked) {
			next := end
			resp.NextCursor = &next
		}
	} else {
		resp.Videos = []*domain.CompetitorVideo{}
	}

	if until, found, cuErr := o.poolStore.CachedUntil(ctx, req.UserID, req.ChannelID, rangeKey); cuErr == nil && found {
		resp.CachedUntil = &until
	}
	resp.TargetSizeDescription = o.targetSizeDescription(ctx, req.ChannelID)

	return resp, nil
}

// listingFilters maps the listing query params onto the shared filter state.
// The listing exposes coarse presets, not the full filter surface.
func listingFilters(req *ListRequest) (domain.FilterState, error) {
	filters := domain.DefaultFilterState()

	switch req.Range {
	case "", "28d":
		filters.DateRange = domain.DateRange30d
	case "7d":
		filters.DateRange = domain.DateRange7d
	default:
		return filters, errors.NewValidationError("range must be 7d or 28d", "range", req.Range)
	}

	switch req.Sort {
	case "", "velocity":
		filters.SortBy = domain.SortVelocity
	case "engagement":
		filters.SortBy = domain.SortEngagement
	case "newest":
		filters.SortBy = domain.SortNewest
	case "outliers":
		filters.SortBy = domain.SortOutliers
	default:
		return filters, errors.NewValidationError("unknown sort", "sort", req.Sort)
	}

	return filters, nil
}

// targetSizeDescription describes the subscriber window the competitors were
// drawn from, for display next to the listing.
func (o *Orchestrator) targetSizeDescription(ctx context.Context, channelID string) string {
	subs := o.lookupSubscriberCount(ctx, channelID)
	if subs <= 0 {
		return ""
	}
	lower := int64(float64(subs) * o.cfg.MinSizeFactor)
	upper := int64(float64(subs) * o.cfg.MaxSizeFactor)
	return fmt.Sprintf("channels between %s and %s subscribers", formatCount(lower), formatCount(upper))
}

func formatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	case n >= 1_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000)) + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimTrailingZero(s string) string {
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
