package metrics

import (
	"testing"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

func listedVideo(videoID string, views int64, viewsPerDay float64, age time.Duration, durationSec *int64, now time.Time) *domain.CompetitorVideo {
	return &domain.CompetitorVideo{
		VideoID:     videoID,
		ViewCount:   views,
		PublishedAt: now.Add(-age),
		DurationSec: durationSec,
		Derived:     domain.DerivedMetrics{ViewsPerDay: viewsPerDay},
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestFilterDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	videos := []*domain.CompetitorVideo{
		listedVideo("a", 1000, 50, 24*time.Hour, nil, now),
		listedVideo("b", 2000, 500, 48*time.Hour, nil, now),
		listedVideo("c", 3000, 5, 72*time.Hour, nil, now),
	}

	state := domain.DefaultFilterState()
	state.MinViewsPerDay = 40

	filtered := Filter(videos, state, now)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(filtered))
	}
	if len(videos) != 3 || videos[0].VideoID != "a" || videos[2].VideoID != "c" {
		t.Fatalf("input slice was mutated: %v", videos)
	}

	// Relaxing the filter restores the dropped video from the same input.
	state.MinViewsPerDay = 0
	restored := Filter(videos, state, now)
	if len(restored) != 3 {
		t.Fatalf("expected 3 matches after relaxing, got %d", len(restored))
	}
}

func TestFilterContentTypeFailsOpenForShorts(t *testing.T) {
	now := time.Now()
	videos := []*domain.CompetitorVideo{
		listedVideo("known-short", 100, 10, time.Hour, int64Ptr(45), now),
		listedVideo("known-long", 100, 10, time.Hour, int64Ptr(600), now),
		listedVideo("unknown", 100, 10, time.Hour, nil, now),
	}

	state := domain.DefaultFilterState()
	state.ContentType = domain.ContentTypeShorts
	shorts := Filter(videos, state, now)
	if len(shorts) != 2 {
		t.Fatalf("expected short + unknown to pass the shorts filter, got %d", len(shorts))
	}

	state.ContentType = domain.ContentTypeLong
	long := Filter(videos, state, now)
	if len(long) != 1 || long[0].VideoID != "known-long" {
		t.Fatalf("expected only the known long video, got %v", long)
	}
}

func TestFilterDateRangeCutoff(t *testing.T) {
	now := time.Now()
	videos := []*domain.CompetitorVideo{
		listedVideo("fresh", 100, 10, 3*24*time.Hour, nil, now),
		listedVideo("stale", 100, 10, 40*24*time.Hour, nil, now),
	}

	state := domain.DefaultFilterState()
	state.DateRange = domain.DateRange7d

	filtered := Filter(videos, state, now)
	if len(filtered) != 1 || filtered[0].VideoID != "fresh" {
		t.Fatalf("expected only the fresh video, got %v", filtered)
	}
}

func TestSortReturnsCopyAndIsStable(t *testing.T) {
	now := time.Now()
	videos := []*domain.CompetitorVideo{
		listedVideo("a", 100, 10, time.Hour, nil, now),
		listedVideo("b", 300, 10, 2*time.Hour, nil, now),
		listedVideo("c", 200, 10, 3*time.Hour, nil, now),
	}

	sorted := Sort(videos, domain.SortTotalViews)

	if videos[0].VideoID != "a" || videos[1].VideoID != "b" || videos[2].VideoID != "c" {
		t.Fatalf("input order was mutated: %v", videos)
	}
	if sorted[0].VideoID != "b" || sorted[1].VideoID != "c" || sorted[2].VideoID != "a" {
		t.Fatalf("unexpected sort order: %v", sorted)
	}

	// Equal views-per-day: stable sort keeps input order across repeated sorts.
	first := Sort(videos, domain.SortViewsPerDay)
	second := Sort(first, domain.SortViewsPerDay)
	for i := range first {
		if first[i].VideoID != second[i].VideoID {
			t.Fatalf("re-sorting shuffled tied items: %v vs %v", first, second)
		}
	}
}

func TestSortOutliersUnscoredSinkToBottom(t *testing.T) {
	now := time.Now()
	score := 2.5
	scored := listedVideo("scored", 100, 10, time.Hour, nil, now)
	scored.Derived.OutlierScore = &score
	plain := listedVideo("plain", 100, 10, time.Hour, nil, now)

	sorted := Sort([]*domain.CompetitorVideo{plain, scored}, domain.SortOutliers)

	if sorted[0].VideoID != "scored" {
		t.Fatalf("expected the scored video first, got %v", sorted)
	}
}

func TestSortVelocityFallsBackToViewsPerDay(t *testing.T) {
	now := time.Now()
	fast := listedVideo("fast", 100, 10, time.Hour, nil, now)
	fast.Derived.Velocity24h = int64Ptr(5000)
	building := listedVideo("building", 100, 800, time.Hour, nil, now)

	sorted := Sort([]*domain.CompetitorVideo{building, fast}, domain.SortVelocity)

	if sorted[0].VideoID != "fast" {
		t.Fatalf("expected measured velocity to beat views-per-day fallback, got %v", sorted)
	}
}
