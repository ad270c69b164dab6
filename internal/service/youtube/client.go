package youtube

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/service/cache"
	"github.com/creatorlens/creatorlens-go/internal/util"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client wraps the YouTube Data API with quota accounting. Search calls cost
// 100 units; list calls cost 1. The daily budget resets at midnight Pacific,
// matching the API's own accounting.
type Client struct {
	service    *youtube.Service
	cache      *cache.CacheService
	logger     *zap.Logger
	quotaUsed  int
	quotaMu    sync.Mutex
	quotaReset time.Time
}

func NewClient(apiKey string, cacheSvc *cache.CacheService, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	ctx := context.Background()
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	c := &Client{
		service:    service,
		cache:      cacheSvc,
		logger:     logger,
		quotaReset: getNextQuotaReset(),
	}

	logger.Info("YouTube client initialized",
		zap.Time("quotaReset", c.quotaReset))

	return c, nil
}

func getNextQuotaReset() time.Time {
	pt, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Now().In(pt)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, pt)
}

func (c *Client) checkQuota(cost int) error {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()

	now := time.Now()
	if now.After(c.quotaReset) {
		c.quotaUsed = 0
		c.quotaReset = getNextQuotaReset()
		c.logger.Info("YouTube API quota auto-reset",
			zap.Time("nextReset", c.quotaReset))
	}

	if c.quotaUsed+cost > (constants.QuotaConfig.DailyLimit - constants.QuotaConfig.SafetyMargin) {
		return errors.NewQuotaError("YouTube API quota exhausted", 429, map[string]any{
			"used":       c.quotaUsed,
			"limit":      constants.QuotaConfig.DailyLimit,
			"requested":  cost,
			"reset_time": c.quotaReset.Format(time.RFC3339),
		})
	}

	return nil
}

func (c *Client) consumeQuota(cost int) {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()

	c.quotaUsed += cost
	remaining := constants.QuotaConfig.DailyLimit - c.quotaUsed

	c.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", c.quotaUsed),
		zap.Int("remaining", remaining))

	if remaining < constants.QuotaConfig.SafetyMargin {
		c.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("resetTime", c.quotaReset))
	}
}

func (c *Client) QuotaStatus() (used, remaining int, resetTime time.Time) {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()

	if time.Now().After(c.quotaReset) {
		return 0, constants.QuotaConfig.DailyLimit, getNextQuotaReset()
	}
	return c.quotaUsed, constants.QuotaConfig.DailyLimit - c.quotaUsed, c.quotaReset
}

// SearchSimilarChannels finds channels matching the combined keywords. A
// search costs 100 units, so results are cached for a couple of hours.
func (c *Client) SearchSimilarChannels(ctx context.Context, keywords []string, limit int64) ([]*domain.ChannelSummary, error) {
	cacheKey := fmt.Sprintf("creatorlens:similar_channels:%s:%d", strings.ToLower(strings.Join(keywords, "|")), limit)
	var cached []*domain.ChannelSummary
	if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found && cached != nil {
		c.logger.Debug("Similar channels cache hit", zap.Int("channels", len(cached)))
		return cached, nil
	}

	if err := c.checkQuota(constants.QuotaConfig.SearchCost); err != nil {
		return nil, err
	}

	call := c.service.Search.List([]string{"snippet"}).
		Q(strings.Join(keywords, " ")).
		Type("channel").
		MaxResults(limit)

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, c.wrapAPIError("channel search", err)
	}
	c.consumeQuota(constants.QuotaConfig.SearchCost)

	channels := make([]*domain.ChannelSummary, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.ChannelId == "" {
			continue
		}
		channels = append(channels, &domain.ChannelSummary{
			ChannelID:    item.Id.ChannelId,
			ChannelTitle: item.Snippet.Title,
			ThumbnailURL: extractThumbnail(item.Snippet.Thumbnails),
		})
	}

	if err := c.cache.Set(ctx, cacheKey, channels, constants.CacheTTL.ChannelStats); err != nil {
		c.logger.Warn("Failed to cache similar channels", zap.Error(err))
	}

	return channels, nil
}

// SearchNicheVideos runs one page of a niche query. The returned page token
// feeds the rotating-query cursor; stats come later from the batch endpoint.
func (c *Client) SearchNicheVideos(ctx context.Context, query string, publishedAfter time.Time, pageToken string, limit int64) (*domain.NichePage, error) {
	if err := c.checkQuota(constants.QuotaConfig.SearchCost); err != nil {
		return nil, err
	}

	call := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Order("viewCount").
		MaxResults(limit)
	if !publishedAfter.IsZero() {
		call = call.PublishedAfter(publishedAfter.Format(time.RFC3339))
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, c.wrapAPIError("niche video search", err)
	}
	c.consumeQuota(constants.QuotaConfig.SearchCost)

	page := &domain.NichePage{NextPageToken: response.NextPageToken}
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		page.Videos = append(page.Videos, &domain.RawVideo{
			VideoID:      item.Id.VideoId,
			ChannelID:    item.Snippet.ChannelId,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			ThumbnailURL: extractThumbnail(item.Snippet.Thumbnails),
			PublishedAt:  publishedAt,
		})
	}

	return page, nil
}

// FetchRecentChannelVideos lists a channel's recent uploads with stats and
// durations resolved, ready for views-per-day estimation.
func (c *Client) FetchRecentChannelVideos(ctx context.Context, channelID string, publishedAfter time.Time, maxCount int64) ([]*domain.RawVideo, error) {
	if err := c.checkQuota(constants.QuotaConfig.SearchCost + constants.QuotaConfig.ListCost); err != nil {
		return nil, err
	}

	call := c.service.Search.List([]string{"id", "snippet"}).
		ChannelId(channelID).
		Type("video").
		Order("date").
		MaxResults(maxCount)
	if !publishedAfter.IsZero() {
		call = call.PublishedAfter(publishedAfter.Format(time.RFC3339))
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, c.wrapAPIError("channel videos search", err)
	}
	c.consumeQuota(constants.QuotaConfig.SearchCost)

	videoIDs := make([]string, 0, len(response.Items))
	skeletons := make(map[string]*domain.RawVideo, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		videoIDs = append(videoIDs, item.Id.VideoId)
		skeletons[item.Id.VideoId] = &domain.RawVideo{
			VideoID:      item.Id.VideoId,
			ChannelID:    channelID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			ThumbnailURL: extractThumbnail(item.Snippet.Thumbnails),
			PublishedAt:  publishedAt,
		}
	}

	if len(videoIDs) == 0 {
		return nil, nil
	}

	stats, err := c.FetchVideosStatsBatch(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	videos := make([]*domain.RawVideo, 0, len(videoIDs))
	for _, id := range videoIDs {
		video := skeletons[id]
		if s, ok := stats[id]; ok {
			video.ViewCount = s.ViewCount
			video.DurationSec = s.DurationSec
			video.ViewsPerDay = float64(s.ViewCount) / video.AgeDays(now)
		}
		videos = append(videos, video)
	}

	return videos, nil
}

// FetchVideosStatsBatch retrieves current stats for many videos, batching 50
// IDs per call (the API maximum).
func (c *Client) FetchVideosStatsBatch(ctx context.Context, videoIDs []string) (map[string]*domain.VideoStats, error) {
	if len(videoIDs) == 0 {
		return map[string]*domain.VideoStats{}, nil
	}

	result := make(map[string]*domain.VideoStats, len(videoIDs))

	const batchSize = 50
	for i := 0; i < len(videoIDs); i += batchSize {
		batch := videoIDs[i:util.Min(i+batchSize, len(videoIDs))]

		if err := c.checkQuota(constants.QuotaConfig.ListCost); err != nil {
			return result, err
		}

		call := c.service.Videos.List([]string{"statistics", "contentDetails"}).
			Id(batch...)

		response, err := call.Context(ctx).Do()
		if err != nil {
			c.logger.Error("Failed to fetch video stats batch",
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
			continue
		}
		c.consumeQuota(constants.QuotaConfig.ListCost)

		for _, item := range response.Items {
			stats := &domain.VideoStats{
				ViewCount: int64(item.Statistics.ViewCount),
			}
			if item.Statistics.LikeCount > 0 {
				likes := int64(item.Statistics.LikeCount)
				stats.LikeCount = &likes
			}
			if item.Statistics.CommentCount > 0 {
				comments := int64(item.Statistics.CommentCount)
				stats.CommentCount = &comments
			}
			if item.ContentDetails != nil && item.ContentDetails.Duration != "" {
				if seconds, ok := parseISO8601Duration(item.ContentDetails.Duration); ok {
					stats.DurationSec = &seconds
				}
			}
			result[item.Id] = stats
		}
	}

	return result, nil
}

// FetchChannelStats retrieves subscriber counts for many channels, batched 50
// per call. Per-batch failures are logged and skipped.
func (c *Client) FetchChannelStats(ctx context.Context, channelIDs []string) (map[string]*domain.ChannelStats, error) {
	if len(channelIDs) == 0 {
		return map[string]*domain.ChannelStats{}, nil
	}

	cost := len(channelIDs) * constants.QuotaConfig.ListCost
	if err := c.checkQuota(cost); err != nil {
		return nil, err
	}

	result := make(map[string]*domain.ChannelStats, len(channelIDs))

	const batchSize = 50
	for i := 0; i < len(channelIDs); i += batchSize {
		batch := channelIDs[i:util.Min(i+batchSize, len(channelIDs))]

		call := c.service.Channels.List([]string{"statistics", "snippet"}).
			Id(batch...)

		response, err := call.Context(ctx).Do()
		if err != nil {
			c.logger.Error("Failed to fetch channel statistics",
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
			continue
		}

		now := time.Now()
		for _, channel := range response.Items {
			result[channel.Id] = &domain.ChannelStats{
				ChannelID:       channel.Id,
				ChannelTitle:    channel.Snippet.Title,
				SubscriberCount: int64(channel.Statistics.SubscriberCount),
				VideoCount:      int64(channel.Statistics.VideoCount),
				ViewCount:       int64(channel.Statistics.ViewCount),
				FetchedAt:       now,
			}
		}
	}

	c.consumeQuota(cost)

	c.logger.Debug("Channel statistics fetched",
		zap.Int("channels", len(channelIDs)),
		zap.Int("results", len(result)))

	return result, nil
}

func (c *Client) wrapAPIError(operation string, err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 403 {
		c.quotaMu.Lock()
		used := c.quotaUsed
		reset := c.quotaReset
		c.quotaMu.Unlock()
		return errors.NewQuotaError("YouTube API quota exceeded", 403, map[string]any{
			"operation":  operation,
			"used":       used,
			"reset_time": reset.Format(time.RFC3339),
		})
	}
	return errors.NewAPIError(fmt.Sprintf("YouTube API %s failed", operation), 502, map[string]any{
		"operation": operation,
	}).WithCause(err)
}

func extractThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}

	if thumbnails.Maxres != nil && thumbnails.Maxres.Url != "" {
		return thumbnails.Maxres.Url
	}
	if thumbnails.High != nil && thumbnails.High.Url != "" {
		return thumbnails.High.Url
	}
	if thumbnails.Medium != nil && thumbnails.Medium.Url != "" {
		return thumbnails.Medium.Url
	}
	if thumbnails.Default != nil && thumbnails.Default.Url != "" {
		return thumbnails.Default.Url
	}

	return ""
}
