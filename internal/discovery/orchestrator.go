package discovery

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/config"
	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/metrics"
	"github.com/creatorlens/creatorlens-go/internal/stream"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
)

type Mode string

const (
	ModeCompetitorSearch Mode = "competitor_search"
	ModeSearchMyNiche    Mode = "search_my_niche"
)

const (
	searchPageSize      = int64(25)
	snapshotHistorySize = 32
	itemsChunkSize      = 20
)

// SearchRequest is one streaming discovery request, decoded from the HTTP
// body by the handler.
type SearchRequest struct {
	Mode              Mode               `json:"mode"`
	UserID            string             `json:"userId"`
	ChannelID         string             `json:"channelId"`
	NicheText         string             `json:"nicheText,omitempty"`
	ReferenceVideoURL string             `json:"referenceVideoUrl,omitempty"`
	Filters           domain.FilterState `json:"filters"`
	Cursor            string             `json:"cursor,omitempty"`
}

// Orchestrator runs the discovery pipeline: niche resolution, candidate
// search, snapshot capture, ranking and streamed emission.
type Orchestrator struct {
	platform     Platform
	niche        NicheResolver
	snapshots    SnapshotStore
	videos       VideoStore
	poolStore    PoolStore
	hotCache     HotPoolCache
	channelStats ChannelStatsStore
	cfg          config.DiscoveryConfig
	logger       *zap.Logger
	now          func() time.Time
}

// Deps wires the orchestrator's collaborators. Nil HotPoolCache disables the
// redis layer; everything else is required.
type Deps struct {
	Platform     Platform
	Niche        NicheResolver
	Snapshots    SnapshotStore
	Videos       VideoStore
	PoolStore    PoolStore
	HotCache     HotPoolCache
	ChannelStats ChannelStatsStore
	Config       config.DiscoveryConfig
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewOrchestrator(deps Deps) *Orchestrator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		platform:     deps.Platform,
		niche:        deps.Niche,
		snapshots:    deps.Snapshots,
		videos:       deps.Videos,
		poolStore:    deps.PoolStore,
		hotCache:     deps.HotCache,
		channelStats: deps.ChannelStats,
		cfg:          deps.Config,
		logger:       deps.Logger,
		now:          now,
	}
}

// Search executes one streamed discovery page. Every outcome, including
// failure, ends with a terminal event on the writer.
func (o *Orchestrator) Search(ctx context.Context, req *SearchRequest, w *stream.Writer) {
	start := o.now()

	if err := o.validateRequest(req); err != nil {
		w.Error(err.Error(), errorCode(err), false)
		return
	}

	cursor, err := domain.DecodeSearchCursor(req.Cursor)
	if err != nil {
		w.Error("cursor is malformed, start a fresh search", errorCode(err), false)
		return
	}

	priorScanned := 0
	if cursor != nil {
		priorScanned = cursor.ScannedCount
	}
	w.Status(domain.StatusSearching, "analyzing the niche", priorScanned, 0)

	queries, err := o.resolveQueries(ctx, req)
	if err != nil || len(queries.Queries) == 0 {
		if err != nil {
			o.logger.Warn("niche resolution failed", zap.String("channel", req.ChannelID), zap.Error(err))
		}
		// No queries means an empty result with an explanation, not an error.
		w.Status(domain.StatusDone, "could not determine a niche for this channel yet", priorScanned, 0)
		w.Items(nil, 0)
		w.Done(domain.DoneSummary{
			ScannedCount: priorScanned,
			TimeMs:       o.now().Sub(start).Milliseconds(),
			Exhausted:    true,
		}, "")
		return
	}

	poolKey := MakeCacheKey(string(req.Mode), queries.Niche, queries.Queries, req.Filters)
	page := 0
	if cursor != nil {
		page = cursor.QueryIndex
	}
	rangeKey := makeRangeKey(req.Filters.DateRange, poolKey, page)

	raw, cacheHit := o.readPool(ctx, req, rangeKey)
	scanned := priorScanned
	exhausted := false
	var nextCursor *domain.SearchCursor

	if cacheHit {
		scanned += len(raw)
		if req.Mode == ModeSearchMyNiche {
			raw = filterSeen(raw, cursor)
			nextCursor = advanceCachedCursor(cursor, raw, len(queries.Queries), scanned)
			exhausted = nextCursor == nil
		} else {
			exhausted = true
		}
	} else {
		switch req.Mode {
		case ModeSearchMyNiche:
			rot := newRotation(o.platform, queries.Queries, o.logger)
			result, scanErr := rot.scan(ctx, cursor, o.cfg.PageSize, req.Filters.DateRange.Cutoff(start), searchPageSize)
			if scanErr != nil {
				o.emitSearchFailure(w, scanErr)
				return
			}
			raw = result.videos
			scanned = result.scanned
			nextCursor = result.nextCursor
			exhausted = result.exhausted
		case ModeCompetitorSearch:
			channelVideos, scanErr := o.discoverByChannels(ctx, req, queries.Queries)
			if scanErr != nil {
				o.emitSearchFailure(w, scanErr)
				return
			}
			raw = channelVideos
			scanned += len(channelVideos)
			exhausted = true
		}

		raw = excludeChannel(raw, req.ChannelID)
		raw = capPerChannel(raw, o.cfg.VideosPerChannel)
		o.writePool(ctx, req, rangeKey, raw)
	}

	w.Status(domain.StatusFiltering, "checking performance history", scanned, len(raw))

	o.captureSnapshots(ctx, raw)

	ranked := o.rank(ctx, raw, req.Filters)

	encodedCursor := ""
	if nextCursor != nil {
		encoded, encErr := nextCursor.Encode()
		if encErr != nil {
			o.logger.Error("cursor encode failed", zap.Error(encErr))
		} else {
			encodedCursor = encoded
		}
	}

	// Items go out in chunks so a client that disconnects mid-stream keeps
	// what it already received; the error event marks those results partial.
	if len(ranked) == 0 {
		w.Items(ranked, 0)
	}
	for i := 0; i < len(ranked); i += itemsChunkSize {
		if ctx.Err() != nil {
			w.Error("search cancelled before all results were delivered", errorCode(ctx.Err()), i > 0)
			return
		}
		end := i + itemsChunkSize
		if end > len(ranked) {
			end = len(ranked)
		}
		w.Items(ranked[i:end], len(ranked))
	}
	w.Done(domain.DoneSummary{
		ScannedCount:  scanned,
		ReturnedCount: len(ranked),
		CacheHit:      cacheHit,
		TimeMs:        o.now().Sub(start).Milliseconds(),
		Exhausted:     exhausted,
	}, encodedCursor)
}

func (o *Orchestrator) validateRequest(req *SearchRequest) error {
	switch req.Mode {
	case ModeCompetitorSearch, ModeSearchMyNiche:
	default:
		return errors.NewValidationError("unknown search mode", "mode", string(req.Mode))
	}
	if req.UserID == "" {
		return errors.NewValidationError("userId is required", "userId", req.UserID)
	}
	if req.ChannelID == "" {
		return errors.NewValidationError("channelId is required", "channelId", req.ChannelID)
	}
	return req.Filters.Validate()
}

// resolveQueries builds niche signals from the request seed and the user's
// recent uploads, then asks the resolver for rotating queries.
func (o *Orchestrator) resolveQueries(ctx context.Context, req *SearchRequest) (*domain.NicheQueries, error) {
	signals := domain.NicheSignals{NicheText: req.NicheText}

	if req.ReferenceVideoURL != "" {
		if videoID := extractVideoID(req.ReferenceVideoURL); videoID != "" {
			if video, err := o.videos.FindByID(ctx, videoID); err == nil && video != nil {
				signals.VideoTitles = append(signals.VideoTitles, video.Title)
			}
		}
	}

	if signals.NicheText == "" && len(signals.VideoTitles) == 0 {
		recent, err := o.platform.FetchRecentChannelVideos(ctx, req.ChannelID, o.now().AddDate(0, 0, -90), 10)
		if err != nil {
			o.logger.Warn("recent uploads unavailable for niche signals",
				zap.String("channel", req.ChannelID), zap.Error(err))
		}
		for _, video := range recent {
			signals.VideoTitles = append(signals.VideoTitles, video.Title)
		}
	}

	return o.niche.GenerateNicheQueries(ctx, req.ChannelID, signals)
}

// discoverByChannels is the channel-similarity path: find channels near the
// user's subscriber count, then pull each one's recent uploads concurrently.
func (o *Orchestrator) discoverByChannels(ctx context.Context, req *SearchRequest, queries []string) ([]*domain.RawVideo, error) {
	similar, err := o.platform.SearchSimilarChannels(ctx, queries, searchPageSize)
	if err != nil {
		return nil, err
	}

	candidates := make([]*domain.ChannelSummary, 0, len(similar))
	ids := make([]string, 0, len(similar))
	for _, ch := range similar {
		if ch.ChannelID == req.ChannelID {
			continue
		}
		candidates = append(candidates, ch)
		ids = append(ids, ch.ChannelID)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	userSubs := o.lookupSubscriberCount(ctx, req.ChannelID)
	statsMap, err := o.platform.FetchChannelStats(ctx, ids)
	if err != nil {
		o.logger.Warn("channel stats unavailable, skipping size filter", zap.Error(err))
		statsMap = map[string]*domain.ChannelStats{}
	}
	for _, stats := range statsMap {
		o.saveChannelStats(ctx, stats)
	}

	selected := selectBySubscriberProximity(candidates, statsMap, userSubs,
		o.cfg.MinSizeFactor, o.cfg.MaxSizeFactor, o.cfg.MaxChannels)

	cutoff := req.Filters.DateRange.Cutoff(o.now())
	results := make([][]*domain.RawVideo, len(selected))
	resultsMu := sync.Mutex{}

	p := pool.New().WithMaxGoroutines(constants.DiscoveryConfig.ChannelFanout)
	for idx, channel := range selected {
		idx, channel := idx, channel
		p.Go(func() {
			videos, fetchErr := o.platform.FetchRecentChannelVideos(ctx, channel.ChannelID, cutoff, int64(o.cfg.VideosPerChannel))
			if fetchErr != nil {
				o.logger.Warn("channel fetch failed, skipping",
					zap.String("channel", channel.ChannelID), zap.Error(fetchErr))
				return
			}
			resultsMu.Lock()
			results[idx] = videos
			resultsMu.Unlock()
		})
	}
	p.Wait()

	merged := make([]*domain.RawVideo, 0, len(selected)*o.cfg.VideosPerChannel)
	for _, videos := range results {
		merged = append(merged, videos...)
	}
	return merged, nil
}

// captureSnapshots inserts a fresh snapshot for every pool video whose last
// capture is at least the minimum interval old. Failures degrade to stale
// derived metrics, never to a failed search.
func (o *Orchestrator) captureSnapshots(ctx context.Context, videos []*domain.RawVideo) {
	if len(videos) == 0 {
		return
	}
	now := o.now()

	ids := make([]string, 0, len(videos))
	byID := make(map[string]*domain.RawVideo, len(videos))
	for _, video := range videos {
		ids = append(ids, video.VideoID)
		byID[video.VideoID] = video
	}

	latest, err := o.snapshots.LatestCapturedAt(ctx, ids)
	if err != nil {
		o.logger.Warn("snapshot recency lookup failed, treating all videos as due", zap.Error(err))
		latest = map[string]time.Time{}
	}

	due := make([]string, 0, len(ids))
	for _, id := range ids {
		capturedAt, ok := latest[id]
		if !ok || now.Sub(capturedAt) >= constants.SnapshotConfig.MinInterval {
			due = append(due, id)
		}
	}

	if len(due) > 0 {
		stats, fetchErr := o.platform.FetchVideosStatsBatch(ctx, due)
		if fetchErr != nil {
			o.logger.Warn("stats batch failed, snapshots deferred", zap.Error(fetchErr))
			stats = map[string]*domain.VideoStats{}
		}
		for id, st := range stats {
			if insErr := o.snapshots.Insert(ctx, &domain.VideoSnapshot{
				VideoID:      id,
				ViewCount:    st.ViewCount,
				LikeCount:    st.LikeCount,
				CommentCount: st.CommentCount,
				CapturedAt:   now,
			}); insErr != nil {
				o.logger.Warn("snapshot insert failed", zap.String("video", id), zap.Error(insErr))
			}
			if video, ok := byID[id]; ok {
				video.ViewCount = st.ViewCount
				if st.DurationSec != nil {
					video.DurationSec = st.DurationSec
				}
				video.ViewsPerDay = float64(st.ViewCount) / video.AgeDays(now)
			}
		}
	}

	for _, video := range videos {
		if upErr := o.videos.Upsert(ctx, video, now); upErr != nil {
			o.logger.Warn("video upsert failed", zap.String("video", video.VideoID), zap.Error(upErr))
		}
	}
}

// rank computes derived metrics from snapshot history, scores outliers over
// the full cohort, then filters and sorts. History failures rank the cohort
// as building rather than failing the request.
func (o *Orchestrator) rank(ctx context.Context, raw []*domain.RawVideo, filters domain.FilterState) []*domain.CompetitorVideo {
	if len(raw) == 0 {
		return nil
	}
	now := o.now()

	ids := make([]string, 0, len(raw))
	for _, video := range raw {
		ids = append(ids, video.VideoID)
	}
	history, err := o.snapshots.HistoryBatch(ctx, ids, snapshotHistorySize)
	if err != nil {
		o.logger.Warn("snapshot history unavailable, metrics degrade to building", zap.Error(err))
		history = map[string][]*domain.VideoSnapshot{}
	}

	cohort := make([]*domain.CompetitorVideo, 0, len(raw))
	for _, video := range raw {
		cv := &domain.CompetitorVideo{
			VideoID:             video.VideoID,
			ChannelID:           video.ChannelID,
			Title:               video.Title,
			ChannelTitle:        video.ChannelTitle,
			ThumbnailURL:        video.ThumbnailURL,
			ChannelThumbnailURL: video.ChannelThumbnailURL,
			PublishedAt:         video.PublishedAt,
			DurationSec:         video.DurationSec,
			ViewCount:           video.ViewCount,
		}
		snapshots := history[video.VideoID]
		if len(snapshots) > 0 {
			cv.ViewCount = snapshots[0].ViewCount
			cv.LikeCount = snapshots[0].LikeCount
			cv.CommentCount = snapshots[0].CommentCount
		}
		fallback := video.ViewsPerDay
		if fallback == 0 {
			fallback = float64(cv.ViewCount) / video.AgeDays(now)
		}
		cv.Derived = metrics.ComputeDerived(snapshots, fallback, now)
		cohort = append(cohort, cv)
	}

	metrics.ScoreOutliers(cohort)
	filtered := metrics.Filter(cohort, filters, now)
	return metrics.Sort(filtered, filters.SortBy)
}

func (o *Orchestrator) readPool(ctx context.Context, req *SearchRequest, rangeKey string) ([]*domain.RawVideo, bool) {
	hotKey := req.UserID + ":" + req.ChannelID + ":" + rangeKey
	if o.hotCache != nil {
		if videos, ok := o.hotCache.GetDiscoveryPool(ctx, hotKey); ok {
			return videos, true
		}
	}
	videos, found, err := o.poolStore.Get(ctx, req.UserID, req.ChannelID, rangeKey, o.cfg.VideosPerChannel, o.now())
	if err != nil {
		o.logger.Warn("pool cache read failed", zap.Error(err))
		return nil, false
	}
	if found && o.hotCache != nil {
		o.hotCache.SetDiscoveryPool(ctx, hotKey, videos, constants.CacheTTL.DiscoveryHot)
	}
	return videos, found
}

func (o *Orchestrator) writePool(ctx context.Context, req *SearchRequest, rangeKey string, videos []*domain.RawVideo) {
	if len(videos) == 0 {
		return
	}
	if err := o.poolStore.Put(ctx, req.UserID, req.ChannelID, rangeKey, videos, constants.CacheTTL.DiscoveryPool, o.now()); err != nil {
		o.logger.Warn("pool cache write failed", zap.Error(err))
	}
	if o.hotCache != nil {
		hotKey := req.UserID + ":" + req.ChannelID + ":" + rangeKey
		o.hotCache.SetDiscoveryPool(ctx, hotKey, videos, constants.CacheTTL.DiscoveryHot)
	}
}

func (o *Orchestrator) lookupSubscriberCount(ctx context.Context, channelID string) int64 {
	if stats, err := o.channelStats.Latest(ctx, channelID); err == nil && stats != nil {
		if o.now().Sub(stats.FetchedAt) < constants.CacheTTL.ChannelStats {
			return stats.SubscriberCount
		}
	}
	statsMap, err := o.platform.FetchChannelStats(ctx, []string{channelID})
	if err != nil {
		o.logger.Warn("own channel stats unavailable", zap.String("channel", channelID), zap.Error(err))
		return 0
	}
	stats, ok := statsMap[channelID]
	if !ok {
		return 0
	}
	o.saveChannelStats(ctx, stats)
	return stats.SubscriberCount
}

func (o *Orchestrator) saveChannelStats(ctx context.Context, stats *domain.ChannelStats) {
	if err := o.channelStats.Save(ctx, stats); err != nil {
		o.logger.Warn("channel stats save failed", zap.String("channel", stats.ChannelID), zap.Error(err))
	}
}

func (o *Orchestrator) emitSearchFailure(w *stream.Writer, err error) {
	o.logger.Error("candidate search failed", zap.Error(err))
	w.Error(err.Error(), errorCode(err), false)
}

// advanceCachedCursor keeps pagination moving when a page was served from
// cache: the seen set grows by the served IDs and the rotation pointer steps
// to the next query.
func advanceCachedCursor(cursor *domain.SearchCursor, served []*domain.RawVideo, queryCount, scanned int) *domain.SearchCursor {
	if queryCount == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	queryIndex := 0
	if cursor != nil {
		seen = cursor.SeenSet()
		queryIndex = cursor.QueryIndex
	}
	for _, video := range served {
		seen[video.VideoID] = struct{}{}
	}
	next := queryIndex + 1
	if next >= queryCount {
		return nil
	}
	return &domain.SearchCursor{
		QueryIndex:   next,
		SeenIDs:      capSeenIDs(seen),
		ScannedCount: scanned,
	}
}

// selectBySubscriberProximity keeps channels inside the size window around the
// user's subscriber count and orders them by log-scale distance. With no
// known user size the window is skipped and search order stands.
func selectBySubscriberProximity(candidates []*domain.ChannelSummary, statsMap map[string]*domain.ChannelStats, userSubs int64, minFactor, maxFactor float64, limit int) []*domain.ChannelSummary {
	type scored struct {
		channel  *domain.ChannelSummary
		distance float64
	}

	kept := make([]scored, 0, len(candidates))
	for _, ch := range candidates {
		subs := ch.SubscriberCount
		if stats, ok := statsMap[ch.ChannelID]; ok {
			subs = stats.SubscriberCount
		}
		if userSubs > 0 && subs > 0 {
			lower := float64(userSubs) * minFactor
			upper := float64(userSubs) * maxFactor
			if float64(subs) < lower || float64(subs) > upper {
				continue
			}
			kept = append(kept, scored{ch, math.Abs(math.Log(float64(subs) / float64(userSubs)))})
			continue
		}
		kept = append(kept, scored{ch, math.MaxFloat64})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].distance < kept[j].distance })

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	selected := make([]*domain.ChannelSummary, 0, len(kept))
	for _, s := range kept {
		selected = append(selected, s.channel)
	}
	return selected
}

// filterSeen drops cursor-seen videos from a cached pool page so "Load More"
// never repeats an already-delivered video.
func filterSeen(videos []*domain.RawVideo, cursor *domain.SearchCursor) []*domain.RawVideo {
	if cursor == nil || len(cursor.SeenIDs) == 0 {
		return videos
	}
	seen := cursor.SeenSet()
	kept := make([]*domain.RawVideo, 0, len(videos))
	for _, video := range videos {
		if _, dup := seen[video.VideoID]; !dup {
			kept = append(kept, video)
		}
	}
	return kept
}

func excludeChannel(videos []*domain.RawVideo, channelID string) []*domain.RawVideo {
	kept := videos[:0]
	for _, video := range videos {
		if video.ChannelID != channelID {
			kept = append(kept, video)
		}
	}
	return kept
}

// capPerChannel bounds channel dominance in the pool, preserving order.
func capPerChannel(videos []*domain.RawVideo, maxPerChannel int) []*domain.RawVideo {
	if maxPerChannel <= 0 {
		return videos
	}
	counts := make(map[string]int, len(videos))
	kept := videos[:0]
	for _, video := range videos {
		if counts[video.ChannelID] >= maxPerChannel {
			continue
		}
		counts[video.ChannelID]++
		kept = append(kept, video)
	}
	return kept
}

func errorCode(err error) string {
	return errors.CodeOf(err)
}
