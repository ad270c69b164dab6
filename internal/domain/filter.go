package domain

import (
	"time"

	"github.com/creatorlens/creatorlens-go/pkg/errors"
)

type ContentType string

const (
	ContentTypeShorts ContentType = "shorts"
	ContentTypeLong   ContentType = "long"
	ContentTypeBoth   ContentType = "both"
)

type DateRange string

const (
	DateRange7d   DateRange = "7d"
	DateRange30d  DateRange = "30d"
	DateRange90d  DateRange = "90d"
	DateRange365d DateRange = "365d"
)

func (r DateRange) Days() int {
	switch r {
	case DateRange7d:
		return 7
	case DateRange30d:
		return 30
	case DateRange90d:
		return 90
	case DateRange365d:
		return 365
	default:
		return 0
	}
}

// Cutoff returns the oldest allowed publish time for the range.
func (r DateRange) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.Days())
}

type SortKey string

const (
	SortViewsPerDay SortKey = "viewsPerDay"
	SortTotalViews  SortKey = "totalViews"
	SortNewest      SortKey = "newest"
	SortEngagement  SortKey = "engagement"
	SortOutliers    SortKey = "outliers"
	SortVelocity    SortKey = "velocity"
)

// FilterState is client-owned; changing any field mints a fresh search key and
// invalidates the cursor, enforced by the caller.
type FilterState struct {
	ContentType    ContentType `json:"contentType"`
	DateRange      DateRange   `json:"dateRange"`
	MinViewsPerDay int64       `json:"minViewsPerDay"`
	MaxViewsPerDay *int64      `json:"maxViewsPerDay,omitempty"`
	MinTotalViews  *int64      `json:"minTotalViews,omitempty"`
	MaxTotalViews  *int64      `json:"maxTotalViews,omitempty"`
	SortBy         SortKey     `json:"sortBy"`
}

func DefaultFilterState() FilterState {
	return FilterState{
		ContentType: ContentTypeBoth,
		DateRange:   DateRange30d,
		SortBy:      SortViewsPerDay,
	}
}

func (f *FilterState) Validate() error {
	switch f.ContentType {
	case ContentTypeShorts, ContentTypeLong, ContentTypeBoth:
	case "":
		f.ContentType = ContentTypeBoth
	default:
		return errors.NewValidationError("unknown content type", "contentType", string(f.ContentType))
	}

	switch f.DateRange {
	case DateRange7d, DateRange30d, DateRange90d, DateRange365d:
	case "":
		f.DateRange = DateRange30d
	default:
		return errors.NewValidationError("unknown date range", "dateRange", string(f.DateRange))
	}

	switch f.SortBy {
	case SortViewsPerDay, SortTotalViews, SortNewest, SortEngagement, SortOutliers, SortVelocity:
	case "":
		f.SortBy = SortViewsPerDay
	default:
		return errors.NewValidationError("unknown sort key", "sortBy", string(f.SortBy))
	}

	if f.MinViewsPerDay < 0 {
		return errors.NewValidationError("minViewsPerDay must be >= 0", "minViewsPerDay", f.MinViewsPerDay)
	}

	return nil
}
