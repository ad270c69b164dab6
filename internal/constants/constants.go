package constants

import "time"

var CacheTTL = struct {
	DiscoveryPool  time.Duration
	DiscoveryHot   time.Duration
	NicheQueries   time.Duration
	RankedListing  time.Duration
	ChannelStats   time.Duration
}{
	DiscoveryPool: 12 * time.Hour,   // durable candidate pool per (user, channel, range)
	DiscoveryHot:  30 * time.Minute, // redis read-through in front of the pool
	NicheQueries:  24 * time.Hour,   // query generation is not time-sensitive
	RankedListing: 12 * time.Hour,   // offset-paginated competitor listing
	ChannelStats:  2 * time.Hour,
}

var SnapshotConfig = struct {
	MinInterval time.Duration
}{
	MinInterval: 6 * time.Hour, // at most one fresh snapshot per video per interval
}

// Velocity windows tolerate the >=6h snapshot cadence; exact alignment is
// never guaranteed, so each window is a band around the target age.
var VelocityWindows = struct {
	Day24Min  time.Duration
	Day24Max  time.Duration
	Day7Min   time.Duration
	Day7Max   time.Duration
	Accel48Min time.Duration
	Accel48Max time.Duration
}{
	Day24Min:   20 * time.Hour,
	Day24Max:   28 * time.Hour,
	Day7Min:    6 * 24 * time.Hour,
	Day7Max:    8 * 24 * time.Hour,
	Accel48Min: 44 * time.Hour,
	Accel48Max: 52 * time.Hour,
}

var DiscoveryConfig = struct {
	MinCohortSize     int
	MaxSeenIDs        int
	ChannelFanout     int
	ShortsMaxDuration int
}{
	MinCohortSize:     3,  // z-scores below this are statistically meaningless
	MaxSeenIDs:        500,
	ChannelFanout:     8,
	ShortsMaxDuration: 60, // YouTube Shorts cutoff in seconds
}

var QuotaConfig = struct {
	DailyLimit   int
	SearchCost   int
	ListCost     int
	SafetyMargin int
}{
	DailyLimit:   10000,
	SearchCost:   100, // search.list cost
	ListCost:     1,   // channels.list / videos.list cost
	SafetyMargin: 2000,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var ListingConfig = struct {
	DefaultLimit int
	MaxLimit     int
}{
	DefaultLimit: 20,
	MaxLimit:     50,
}
