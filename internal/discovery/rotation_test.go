package discovery

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

func TestRotationFillsAcrossQueries(t *testing.T) {
	now := time.Now()
	platform := &fakePlatform{
		pages: map[string]*domain.NichePage{
			"a": {Videos: []*domain.RawVideo{rawVideo("v1", "c1", 100, time.Hour, now)}},
			"b": {Videos: []*domain.RawVideo{rawVideo("v2", "c2", 100, time.Hour, now)}},
			"c": {Videos: []*domain.RawVideo{rawVideo("v3", "c3", 100, time.Hour, now)}},
		},
	}

	rot := newRotation(platform, []string{"a", "b", "c"}, zap.NewNop())
	result, err := rot.scan(context.Background(), nil, 2, now.Add(-30*24*time.Hour), 25)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(result.videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(result.videos))
	}
	if platform.searchCalls[0] != "a" || platform.searchCalls[1] != "b" {
		t.Fatalf("expected queries in rotation order, got %v", platform.searchCalls)
	}
	if result.nextCursor == nil || result.nextCursor.QueryIndex != 2 {
		t.Fatalf("expected rotation to resume at query 2, got %+v", result.nextCursor)
	}
}

func TestRotationResumesFromCursor(t *testing.T) {
	now := time.Now()
	platform := &fakePlatform{
		pages: map[string]*domain.NichePage{
			"a": {Videos: []*domain.RawVideo{rawVideo("v1", "c1", 100, time.Hour, now)}},
			"b": {Videos: []*domain.RawVideo{rawVideo("v2", "c2", 100, time.Hour, now)}},
		},
	}

	cursor := &domain.SearchCursor{QueryIndex: 1, SeenIDs: []string{"v1"}, ScannedCount: 5}
	rot := newRotation(platform, []string{"a", "b"}, zap.NewNop())
	result, err := rot.scan(context.Background(), cursor, 1, now.Add(-30*24*time.Hour), 25)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if platform.searchCalls[0] != "b" {
		t.Fatalf("expected resume at query b, got %v", platform.searchCalls)
	}
	if len(result.videos) != 1 || result.videos[0].VideoID != "v2" {
		t.Fatalf("unexpected videos: %+v", result.videos)
	}
	if result.scanned != 6 {
		t.Fatalf("expected scanned count to accumulate to 6, got %d", result.scanned)
	}
}

func TestRotationExhaustsWhenNothingNew(t *testing.T) {
	now := time.Now()
	stale := rawVideo("v1", "c1", 100, time.Hour, now)
	platform := &fakePlatform{
		pages: map[string]*domain.NichePage{
			"a": {Videos: []*domain.RawVideo{stale}},
			"b": {Videos: []*domain.RawVideo{stale}},
		},
	}

	cursor := &domain.SearchCursor{QueryIndex: 0, SeenIDs: []string{"v1"}}
	rot := newRotation(platform, []string{"a", "b"}, zap.NewNop())
	result, err := rot.scan(context.Background(), cursor, 5, now.Add(-30*24*time.Hour), 25)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if !result.exhausted {
		t.Fatalf("expected exhaustion with only seen videos")
	}
	if result.nextCursor != nil {
		t.Fatalf("expected no continuation cursor, got %+v", result.nextCursor)
	}
}

func TestRotationSingleQueryPaginatesDeep(t *testing.T) {
	now := time.Now()
	platform := &fakePlatform{
		pages: map[string]*domain.NichePage{
			"only": {
				Videos:        []*domain.RawVideo{rawVideo("v1", "c1", 100, time.Hour, now)},
				NextPageToken: "token-2",
			},
		},
	}

	rot := newRotation(platform, []string{"only"}, zap.NewNop())
	result, err := rot.scan(context.Background(), nil, 1, now.Add(-30*24*time.Hour), 25)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if result.nextCursor == nil || result.nextCursor.PageToken != "token-2" || result.nextCursor.QueryIndex != 0 {
		t.Fatalf("expected deep pagination cursor, got %+v", result.nextCursor)
	}
}

func TestRotationEmptyQueryListIsExhausted(t *testing.T) {
	rot := newRotation(&fakePlatform{}, nil, zap.NewNop())
	result, err := rot.scan(context.Background(), nil, 5, time.Now(), 25)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !result.exhausted {
		t.Fatalf("expected exhaustion with no queries")
	}
}
