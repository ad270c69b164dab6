package metrics

import (
	"math"
	"testing"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

func cohortVideo(videoID string, viewsPerDay float64) *domain.CompetitorVideo {
	return &domain.CompetitorVideo{
		VideoID: videoID,
		Derived: domain.DerivedMetrics{ViewsPerDay: viewsPerDay},
	}
}

func TestScoreOutliersZScores(t *testing.T) {
	cohort := []*domain.CompetitorVideo{
		cohortVideo("a", 100),
		cohortVideo("b", 200),
		cohortVideo("c", 300),
	}

	ScoreOutliers(cohort)

	for _, video := range cohort {
		if video.Derived.OutlierScore == nil {
			t.Fatalf("expected %s to be scored", video.VideoID)
		}
	}
	if *cohort[1].Derived.OutlierScore != 0 {
		t.Fatalf("expected mean video score 0, got %f", *cohort[1].Derived.OutlierScore)
	}
	if *cohort[0].Derived.OutlierScore >= 0 || *cohort[2].Derived.OutlierScore <= 0 {
		t.Fatalf("expected symmetric scores, got %f and %f",
			*cohort[0].Derived.OutlierScore, *cohort[2].Derived.OutlierScore)
	}
	if math.Abs(*cohort[0].Derived.OutlierScore+*cohort[2].Derived.OutlierScore) > 1e-9 {
		t.Fatalf("expected scores to sum to zero")
	}
}

func TestScoreOutliersSmallCohortUnscored(t *testing.T) {
	cohort := []*domain.CompetitorVideo{
		cohortVideo("a", 100),
		cohortVideo("b", 99999),
	}

	ScoreOutliers(cohort)

	for _, video := range cohort {
		if video.Derived.OutlierScore != nil {
			t.Fatalf("expected %s to stay unscored in a cohort of two", video.VideoID)
		}
	}
}

func TestScoreOutliersZeroVarianceUnscored(t *testing.T) {
	cohort := []*domain.CompetitorVideo{
		cohortVideo("a", 500),
		cohortVideo("b", 500),
		cohortVideo("c", 500),
		cohortVideo("d", 500),
	}

	ScoreOutliers(cohort)

	for _, video := range cohort {
		if video.Derived.OutlierScore != nil {
			t.Fatalf("expected no scores with zero variance, %s got %f", video.VideoID, *video.Derived.OutlierScore)
		}
	}
}

func TestScoreOutliersPrefersVelocity(t *testing.T) {
	fast := int64(1000)
	slow := int64(10)
	mid := int64(500)
	cohort := []*domain.CompetitorVideo{
		{VideoID: "a", Derived: domain.DerivedMetrics{ViewsPerDay: 1, Velocity24h: &fast}},
		{VideoID: "b", Derived: domain.DerivedMetrics{ViewsPerDay: 99999, Velocity24h: &slow}},
		{VideoID: "c", Derived: domain.DerivedMetrics{ViewsPerDay: 50, Velocity24h: &mid}},
	}

	ScoreOutliers(cohort)

	// Velocity, not views-per-day, decides the ranking.
	if !(*cohort[0].Derived.OutlierScore > *cohort[2].Derived.OutlierScore) {
		t.Fatalf("expected the high-velocity video to outscore the middle one")
	}
	if !(*cohort[2].Derived.OutlierScore > *cohort[1].Derived.OutlierScore) {
		t.Fatalf("expected the low-velocity video to score lowest despite high views per day")
	}
}
