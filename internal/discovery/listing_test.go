package discovery

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

func listingOrchestrator(now time.Time, platform *fakePlatform) *Orchestrator {
	return NewOrchestrator(Deps{
		Platform:     platform,
		Niche:        &fakeNiche{queries: &domain.NicheQueries{Niche: "n", Queries: []string{"q"}}},
		Snapshots:    newFakeSnapshots(),
		Videos:       newFakeVideos(),
		PoolStore:    newFakePool(),
		ChannelStats: newFakeChannelStatsStore(),
		Config:       testConfig(),
		Logger:       zap.NewNop(),
		Now:          func() time.Time { return now },
	})
}

func listingPlatform(now time.Time, videoCount int) *fakePlatform {
	videos := make([]*domain.RawVideo, 0, videoCount)
	for i := 0; i < videoCount; i++ {
		id := string(rune('a' + i))
		videos = append(videos, rawVideo("v-"+id, "peer-"+id, int64(1000*(i+1)), 48*time.Hour, now))
	}

	similar := make([]*domain.ChannelSummary, 0, videoCount)
	channelStats := map[string]*domain.ChannelStats{
		"my-channel": {ChannelID: "my-channel", SubscriberCount: 10000, FetchedAt: now},
	}
	recent := map[string][]*domain.RawVideo{}
	for _, video := range videos {
		similar = append(similar, &domain.ChannelSummary{ChannelID: video.ChannelID, SubscriberCount: 11000})
		channelStats[video.ChannelID] = &domain.ChannelStats{ChannelID: video.ChannelID, SubscriberCount: 11000, FetchedAt: now}
		recent[video.ChannelID] = []*domain.RawVideo{video}
	}

	return &fakePlatform{
		similar:      similar,
		channelStats: channelStats,
		recent:       recent,
		stats:        map[string]*domain.VideoStats{},
	}
}

func TestListCompetitorsPaginatesByOffset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := listingOrchestrator(now, listingPlatform(now, 5))

	first, err := o.ListCompetitors(context.Background(), &ListRequest{
		UserID:    "user-1",
		ChannelID: "my-channel",
		Range:     "28d",
		Sort:      "newest",
		Offset:    0,
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if first.Total != 5 || len(first.Videos) != 2 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(first.Videos), first.Total)
	}
	if first.NextCursor == nil || *first.NextCursor != 2 {
		t.Fatalf("expected next cursor 2, got %v", first.NextCursor)
	}
	if first.CachedUntil == nil {
		t.Fatalf("expected cachedUntil from the pool store")
	}
	if !first.GeneratedAt.Equal(now) {
		t.Fatalf("expected generatedAt %v, got %v", now, first.GeneratedAt)
	}

	last, err := o.ListCompetitors(context.Background(), &ListRequest{
		UserID:    "user-1",
		ChannelID: "my-channel",
		Range:     "28d",
		Sort:      "newest",
		Offset:    4,
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(last.Videos) != 1 || last.NextCursor != nil {
		t.Fatalf("expected the final partial page, got %d items, next %v", len(last.Videos), last.NextCursor)
	}
}

func TestListCompetitorsOffsetPastEnd(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := listingOrchestrator(now, listingPlatform(now, 2))

	resp, err := o.ListCompetitors(context.Background(), &ListRequest{
		UserID:    "user-1",
		ChannelID: "my-channel",
		Offset:    50,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Videos) != 0 || resp.NextCursor != nil {
		t.Fatalf("expected empty page past the end, got %+v", resp)
	}
}

func TestListCompetitorsRejectsBadParams(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := listingOrchestrator(now, listingPlatform(now, 1))

	if _, err := o.ListCompetitors(context.Background(), &ListRequest{UserID: "u", ChannelID: "c", Range: "90d"}); err == nil {
		t.Fatalf("expected range validation error")
	}
	if _, err := o.ListCompetitors(context.Background(), &ListRequest{UserID: "u", ChannelID: "c", Sort: "alphabetical"}); err == nil {
		t.Fatalf("expected sort validation error")
	}
	if _, err := o.ListCompetitors(context.Background(), &ListRequest{UserID: "u", ChannelID: "c", Offset: -1}); err == nil {
		t.Fatalf("expected offset validation error")
	}
}

func TestListCompetitorsTargetSizeDescription(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := listingOrchestrator(now, listingPlatform(now, 1))

	resp, err := o.ListCompetitors(context.Background(), &ListRequest{
		UserID:    "user-1",
		ChannelID: "my-channel",
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if resp.TargetSizeDescription != "channels between 5K and 30K subscribers" {
		t.Fatalf("unexpected size description: %q", resp.TargetSizeDescription)
	}
}
