package domain

import "time"

type DataStatus string

const (
	DataStatusBuilding DataStatus = "building"
	DataStatusReady    DataStatus = "ready"
)

// VideoSnapshot is one immutable observation of a video's public stats.
// Snapshots are append-only and ordered by CapturedAt.
type VideoSnapshot struct {
	VideoID      string    `json:"videoId"`
	ViewCount    int64     `json:"viewCount"`
	LikeCount    *int64    `json:"likeCount,omitempty"`
	CommentCount *int64    `json:"commentCount,omitempty"`
	CapturedAt   time.Time `json:"capturedAt"`
}

// DerivedMetrics are recomputed from snapshot history on every request and
// never persisted as authoritative.
type DerivedMetrics struct {
	ViewsPerDay       float64    `json:"viewsPerDay"`
	Velocity24h       *int64     `json:"velocity24h,omitempty"`
	Velocity7d        *int64     `json:"velocity7d,omitempty"`
	Acceleration24h   *int64     `json:"acceleration24h,omitempty"`
	EngagementPerView *float64   `json:"engagementPerView,omitempty"`
	OutlierScore      *float64   `json:"outlierScore,omitempty"`
	DataStatus        DataStatus `json:"dataStatus"`
}

// RawVideo is the pre-snapshot, pre-derived candidate shape stored in the
// discovery cache.
type RawVideo struct {
	VideoID             string    `json:"videoId"`
	ChannelID           string    `json:"channelId"`
	Title               string    `json:"title"`
	ChannelTitle        string    `json:"channelTitle"`
	ThumbnailURL        string    `json:"thumbnailUrl,omitempty"`
	ChannelThumbnailURL string    `json:"channelThumbnailUrl,omitempty"`
	PublishedAt         time.Time `json:"publishedAt"`
	DurationSec         *int64    `json:"durationSec,omitempty"`
	ViewCount           int64     `json:"viewCount"`
	ViewsPerDay         float64   `json:"viewsPerDay"`
}

// CompetitorVideo is a discovered candidate with its latest stats and the
// derived block computed for this request.
type CompetitorVideo struct {
	VideoID             string    `json:"videoId"`
	ChannelID           string    `json:"channelId"`
	Title               string    `json:"title"`
	ChannelTitle        string    `json:"channelTitle"`
	ThumbnailURL        string    `json:"thumbnailUrl,omitempty"`
	ChannelThumbnailURL string    `json:"channelThumbnailUrl,omitempty"`
	PublishedAt         time.Time `json:"publishedAt"`
	DurationSec         *int64    `json:"durationSec,omitempty"`

	ViewCount    int64  `json:"viewCount"`
	LikeCount    *int64 `json:"likeCount,omitempty"`
	CommentCount *int64 `json:"commentCount,omitempty"`

	Derived DerivedMetrics `json:"derived"`
}

// AgeDays returns the video age in fractional days, floored at one day so
// views-per-day for very fresh uploads stays finite.
func (v *RawVideo) AgeDays(now time.Time) float64 {
	days := now.Sub(v.PublishedAt).Hours() / 24
	if days < 1 {
		return 1
	}
	return days
}

// NichePage is one page of platform search results for a single query string,
// carrying the token needed to resume that query later.
type NichePage struct {
	Videos        []*RawVideo
	NextPageToken string
}

// VideoStats is the latest public stats for one video as returned by the
// platform's batch endpoint.
type VideoStats struct {
	ViewCount    int64
	LikeCount    *int64
	CommentCount *int64
	DurationSec  *int64
}

type ChannelSummary struct {
	ChannelID       string `json:"channelId"`
	ChannelTitle    string `json:"channelTitle"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	SubscriberCount int64  `json:"subscriberCount"`
}

type ChannelStats struct {
	ChannelID       string
	ChannelTitle    string
	SubscriberCount int64
	VideoCount      int64
	ViewCount       int64
	FetchedAt       time.Time
}

// NicheQueries is the output of the niche-resolution port: an opaque rotating
// list of search strings seeded from a channel's content.
type NicheQueries struct {
	Niche   string   `json:"niche"`
	Queries []string `json:"queries"`
}

type NicheSignals struct {
	NicheText    string   `json:"nicheText,omitempty"`
	VideoTitles  []string `json:"videoTitles,omitempty"`
	TopTags      []string `json:"topTags,omitempty"`
	CategoryName string   `json:"categoryName,omitempty"`
}
