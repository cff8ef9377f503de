package constants

import "time"

var CacheTTL = struct {
	ChannelResolution time.Duration
	ChannelListing    time.Duration
	VideoDetails      time.Duration
	Evaluation        time.Duration
}{
	ChannelResolution: 24 * time.Hour,     // resolved channel IDs
	ChannelListing:    30 * time.Minute,   // uploads playlist listings
	VideoDetails:      6 * time.Hour,      // statistics and duration
	Evaluation:        7 * 24 * time.Hour, // per-video commentary decisions
}

var FilterWeights = struct {
	Title       float64
	Description float64
}{
	Title:       0.6,
	Description: 0.4,
}

var Sampling = struct {
	TranscriptThreshold int
	SampleLength        int
	MaxSamples          int
}{
	TranscriptThreshold: 3000, // transcripts at or below this are evaluated whole
	SampleLength:        1000,
	MaxSamples:          3,
}

var Review = struct {
	ConfidenceThreshold float64
}{
	ConfidenceThreshold: 70.0, // winning average below this flags needs_review
}

var Alignment = struct {
	FallbackSpeaker string
}{
	FallbackSpeaker: "SPEAKER_0",
}

var Timeouts = struct {
	Startup     time.Duration
	Shutdown    time.Duration
	YouTubeAPI  time.Duration
	Resolution  time.Duration
	Download    time.Duration
	Recognition time.Duration
	Model       time.Duration
}{
	Startup:     30 * time.Second,
	Shutdown:    10 * time.Second,
	YouTubeAPI:  30 * time.Second,
	Resolution:  15 * time.Second,
	Download:    10 * time.Minute,
	Recognition: 20 * time.Minute, // hour-long recordings
	Model:       120 * time.Second,
}

var PipelineConfig = struct {
	DefaultVideoWorkers int
	MaxVideoWorkers     int
}{
	DefaultVideoWorkers: 2,
	MaxVideoWorkers:     8,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}{
	MaxAttempts: 5,
	BaseDelay:   750 * time.Millisecond,
	MaxDelay:    10 * time.Second,
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
	RateLimitTimeout:    1 * time.Hour, // longer backoff after 429
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var APIConfig = struct {
	MinSearchQueryLength int
	DefaultPort          int
	ReadHeaderTimeout    time.Duration
}{
	MinSearchQueryLength: 3,
	DefaultPort:          8080,
	ReadHeaderTimeout:    10 * time.Second,
}

var UIData = struct {
	MinQuoteLength    int
	MaxQuoteLength    int
	MaxQuotesPerVideo int
}{
	MinQuoteLength:    50,
	MaxQuoteLength:    200,
	MaxQuotesPerVideo: 5,
}
