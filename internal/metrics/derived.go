package metrics

import (
	"time"

	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
)

// ComputeDerived derives velocity, acceleration and engagement metrics from a
// video's snapshot history. Snapshots must be sorted by CapturedAt descending.
// With no history the video is still "building": only the fallback
// views-per-day (total views over age) can be reported.
func ComputeDerived(snapshots []*domain.VideoSnapshot, fallbackViewsPerDay float64, now time.Time) domain.DerivedMetrics {
	derived := domain.DerivedMetrics{
		ViewsPerDay: fallbackViewsPerDay,
		DataStatus:  domain.DataStatusBuilding,
	}

	if len(snapshots) == 0 {
		return derived
	}

	latest := snapshots[0]

	if latest.LikeCount != nil && latest.CommentCount != nil && latest.ViewCount > 0 {
		engagement := float64(*latest.LikeCount+*latest.CommentCount) / float64(latest.ViewCount)
		derived.EngagementPerView = &engagement
	}

	s24 := nearestInWindow(snapshots, now, 24*time.Hour, constants.VelocityWindows.Day24Min, constants.VelocityWindows.Day24Max)
	if s24 != nil {
		v := latest.ViewCount - s24.ViewCount
		derived.Velocity24h = &v
	}

	s7d := nearestInWindow(snapshots, now, 7*24*time.Hour, constants.VelocityWindows.Day7Min, constants.VelocityWindows.Day7Max)
	if s7d != nil {
		v := latest.ViewCount - s7d.ViewCount
		derived.Velocity7d = &v
	}

	// Acceleration compares today's velocity with the one measured a day
	// earlier: v24h minus (views@~24h - views@~48h). It needs a third
	// snapshot in the ~48h band, which makes it the least-available metric.
	if derived.Velocity24h != nil {
		s48 := nearestInWindow(snapshots, now, 48*time.Hour, constants.VelocityWindows.Accel48Min, constants.VelocityWindows.Accel48Max)
		if s48 != nil {
			prevVelocity := s24.ViewCount - s48.ViewCount
			accel := *derived.Velocity24h - prevVelocity
			derived.Acceleration24h = &accel
		}
	}

	if derived.Velocity24h != nil || derived.Velocity7d != nil {
		derived.DataStatus = domain.DataStatusReady
	}

	return derived
}

// nearestInWindow returns the snapshot whose age relative to now is closest to
// target, considering only snapshots aged within [min, max]. Nothing in the
// window means the metric stays undefined; values are never interpolated.
func nearestInWindow(snapshots []*domain.VideoSnapshot, now time.Time, target, min, max time.Duration) *domain.VideoSnapshot {
	var best *domain.VideoSnapshot
	var bestDelta time.Duration

	for _, s := range snapshots {
		age := now.Sub(s.CapturedAt)
		if age < min || age > max {
			continue
		}
		delta := age - target
		if delta < 0 {
			delta = -delta
		}
		if best == nil || delta < bestDelta {
			best = s
			bestDelta = delta
		}
	}

	return best
}
