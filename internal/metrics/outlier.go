package metrics

import (
	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/util"
)

// ScoreOutliers assigns a cohort-relative z-score to each video's OutlierScore
// in place. The trending value is velocity24h when available, views-per-day
// otherwise. Scores are only meaningful within the cohort that produced them.
//
// Cohorts smaller than the minimum, or cohorts with zero variance, are left
// unscored.
func ScoreOutliers(cohort []*domain.CompetitorVideo) {
	if len(cohort) < constants.DiscoveryConfig.MinCohortSize {
		return
	}

	values := make([]float64, len(cohort))
	for i, video := range cohort {
		values[i] = trendingValue(video)
	}

	mean := util.Mean(values)
	stdDev := util.StdDev(values)
	if stdDev == 0 {
		return
	}

	for i, video := range cohort {
		score := (values[i] - mean) / stdDev
		video.Derived.OutlierScore = &score
	}
}

func trendingValue(video *domain.CompetitorVideo) float64 {
	if video.Derived.Velocity24h != nil {
		return float64(*video.Derived.Velocity24h)
	}
	return video.Derived.ViewsPerDay
}
