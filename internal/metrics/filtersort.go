package metrics

import (
	"sort"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
)

// Filter applies the caller's filter state and returns the matching subset.
// The input slice is not modified.
func Filter(videos []*domain.CompetitorVideo, state domain.FilterState, now time.Time) []*domain.CompetitorVideo {
	cutoff := state.DateRange.Cutoff(now)

	result := make([]*domain.CompetitorVideo, 0, len(videos))
	for _, video := range videos {
		if !matchesContentType(video, state.ContentType) {
			continue
		}
		if video.PublishedAt.Before(cutoff) {
			continue
		}
		if video.Derived.ViewsPerDay < float64(state.MinViewsPerDay) {
			continue
		}
		if state.MaxViewsPerDay != nil && video.Derived.ViewsPerDay > float64(*state.MaxViewsPerDay) {
			continue
		}
		if state.MinTotalViews != nil && video.ViewCount < *state.MinTotalViews {
			continue
		}
		if state.MaxTotalViews != nil && video.ViewCount > *state.MaxTotalViews {
			continue
		}
		result = append(result, video)
	}

	return result
}

// matchesContentType fails open on unknown duration: a video only counts as
// long-form when its duration is known to exceed the shorts cutoff.
func matchesContentType(video *domain.CompetitorVideo, contentType domain.ContentType) bool {
	switch contentType {
	case domain.ContentTypeShorts:
		return video.DurationSec == nil || *video.DurationSec <= int64(constants.DiscoveryConfig.ShortsMaxDuration)
	case domain.ContentTypeLong:
		return video.DurationSec != nil && *video.DurationSec > int64(constants.DiscoveryConfig.ShortsMaxDuration)
	default:
		return true
	}
}

// Sort returns a reordered copy; the caller's slice keeps its original order.
// The sort is stable so ties preserve relative input order across re-sorts.
func Sort(videos []*domain.CompetitorVideo, sortBy domain.SortKey) []*domain.CompetitorVideo {
	sorted := make([]*domain.CompetitorVideo, len(videos))
	copy(sorted, videos)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch sortBy {
		case domain.SortTotalViews:
			return a.ViewCount > b.ViewCount
		case domain.SortNewest:
			return a.PublishedAt.After(b.PublishedAt)
		case domain.SortEngagement:
			return engagementOrZero(a) > engagementOrZero(b)
		case domain.SortOutliers:
			return outlierOrZero(a) > outlierOrZero(b)
		case domain.SortVelocity:
			return velocityOrFallback(a) > velocityOrFallback(b)
		default: // SortViewsPerDay: trending-first, velocity beats raw average
			return trendingValue(a) > trendingValue(b)
		}
	})

	return sorted
}

func engagementOrZero(video *domain.CompetitorVideo) float64 {
	if video.Derived.EngagementPerView != nil {
		return *video.Derived.EngagementPerView
	}
	return 0
}

func velocityOrFallback(video *domain.CompetitorVideo) float64 {
	if video.Derived.Velocity24h != nil {
		return float64(*video.Derived.Velocity24h)
	}
	return video.Derived.ViewsPerDay
}

func outlierOrZero(video *domain.CompetitorVideo) float64 {
	if video.Derived.OutlierScore != nil {
		return *video.Derived.OutlierScore
	}
	return 0
}
