package metrics

import (
	"testing"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

func snap(videoID string, views int64, age time.Duration, now time.Time) *domain.VideoSnapshot {
	return &domain.VideoSnapshot{
		VideoID:    videoID,
		ViewCount:  views,
		CapturedAt: now.Add(-age),
	}
}

func TestComputeDerivedVelocityAndAcceleration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snapshots := []*domain.VideoSnapshot{
		snap("v1", 1600, 0, now),
		snap("v1", 1300, 24*time.Hour, now),
		snap("v1", 1900, 48*time.Hour, now),
	}

	derived := ComputeDerived(snapshots, 100, now)

	if derived.Velocity24h == nil || *derived.Velocity24h != 300 {
		t.Fatalf("expected velocity24h 300, got %v", derived.Velocity24h)
	}
	if derived.Acceleration24h == nil || *derived.Acceleration24h != 900 {
		t.Fatalf("expected acceleration24h 900, got %v", derived.Acceleration24h)
	}
	if derived.DataStatus != domain.DataStatusReady {
		t.Fatalf("expected ready status, got %s", derived.DataStatus)
	}
}

func TestComputeDerivedEmptyHistoryIsBuilding(t *testing.T) {
	now := time.Now()

	derived := ComputeDerived(nil, 42.5, now)

	if derived.DataStatus != domain.DataStatusBuilding {
		t.Fatalf("expected building status, got %s", derived.DataStatus)
	}
	if derived.ViewsPerDay != 42.5 {
		t.Fatalf("expected fallback views per day 42.5, got %f", derived.ViewsPerDay)
	}
	if derived.Velocity24h != nil || derived.Velocity7d != nil || derived.Acceleration24h != nil {
		t.Fatalf("expected no velocity metrics without history")
	}
}

func TestComputeDerivedSkipsOutOfWindowSnapshots(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// The older snapshot is 30h old, outside the [20h, 28h] band, so the 24h
	// velocity must stay undefined rather than be interpolated.
	snapshots := []*domain.VideoSnapshot{
		snap("v1", 2000, 0, now),
		snap("v1", 1000, 30*time.Hour, now),
	}

	derived := ComputeDerived(snapshots, 50, now)

	if derived.Velocity24h != nil {
		t.Fatalf("expected undefined velocity24h, got %d", *derived.Velocity24h)
	}
	if derived.DataStatus != domain.DataStatusBuilding {
		t.Fatalf("expected building status, got %s", derived.DataStatus)
	}
}

func TestComputeDerivedPicksNearestInWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snapshots := []*domain.VideoSnapshot{
		snap("v1", 5000, 0, now),
		snap("v1", 4700, 21*time.Hour, now),
		snap("v1", 4400, 25*time.Hour, now),
	}

	derived := ComputeDerived(snapshots, 50, now)

	// 25h is closer to the 24h target than 21h.
	if derived.Velocity24h == nil || *derived.Velocity24h != 600 {
		t.Fatalf("expected velocity24h 600 from the 25h snapshot, got %v", derived.Velocity24h)
	}
}

func TestComputeDerivedSevenDayVelocity(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	snapshots := []*domain.VideoSnapshot{
		snap("v1", 90000, 0, now),
		snap("v1", 60000, 7*24*time.Hour, now),
	}

	derived := ComputeDerived(snapshots, 50, now)

	if derived.Velocity7d == nil || *derived.Velocity7d != 30000 {
		t.Fatalf("expected velocity7d 30000, got %v", derived.Velocity7d)
	}
	if derived.Velocity24h != nil {
		t.Fatalf("expected no 24h velocity without a snapshot in the band")
	}
	if derived.DataStatus != domain.DataStatusReady {
		t.Fatalf("expected ready status with a defined 7d velocity")
	}
}

func TestComputeDerivedEngagementNeedsBothCounts(t *testing.T) {
	now := time.Now()
	likes := int64(120)
	comments := int64(30)

	full := &domain.VideoSnapshot{VideoID: "v1", ViewCount: 3000, LikeCount: &likes, CommentCount: &comments, CapturedAt: now}
	derived := ComputeDerived([]*domain.VideoSnapshot{full}, 10, now)
	if derived.EngagementPerView == nil || *derived.EngagementPerView != 0.05 {
		t.Fatalf("expected engagement 0.05, got %v", derived.EngagementPerView)
	}

	partial := &domain.VideoSnapshot{VideoID: "v1", ViewCount: 3000, LikeCount: &likes, CapturedAt: now}
	derived = ComputeDerived([]*domain.VideoSnapshot{partial}, 10, now)
	if derived.EngagementPerView != nil {
		t.Fatalf("expected undefined engagement with hidden comment count, got %v", *derived.EngagementPerView)
	}
}
