//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/speech-archive-go/internal/config"
	"github.com/kapu/speech-archive-go/internal/service/cache"
	"github.com/kapu/speech-archive-go/internal/service/youtube"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if cfg.YouTube.APIKey == "" {
		fmt.Println("❌ YOUTUBE_API_KEY not set in .env")
		return
	}

	fmt.Printf("Using API Key: %s...%s\n\n",
		cfg.YouTube.APIKey[:10],
		cfg.YouTube.APIKey[len(cfg.YouTube.APIKey)-4:])

	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled {
		cacheSvc, err = cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create cache", zap.Error(err))
		}
	}

	yt, err := youtube.NewYouTubeService(cfg.YouTube.APIKey, cacheSvc, logger)
	if err != nil {
		logger.Fatal("Failed to create YouTube service", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Test 1: Resolve a channel reference
	fmt.Println("=== Test 1: Channel Resolution ===")
	channelURL := "https://www.youtube.com/@WhiteHouse"

	channelID, err := yt.ResolveChannelID(ctx, channelURL)
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		return
	}
	fmt.Printf("✅ %s -> %s\n", channelURL, channelID)

	// Test 2: List recent uploads
	fmt.Println("\n=== Test 2: Recent Uploads (5 videos) ===")
	videos, err := yt.ListChannelVideos(ctx, channelID, 5)
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
	} else {
		fmt.Printf("✅ Found %d videos\n", len(videos))
		for i, vid := range videos {
			fmt.Printf("   %d. [%s] %s\n", i+1, vid.VideoID, vid.Title)
		}
	}

	// Test 3: Details for the first video
	if len(videos) > 0 {
		fmt.Println("\n=== Test 3: Video Details ===")
		details, err := yt.GetVideoDetails(ctx, videos[0].VideoID)
		if err != nil {
			fmt.Printf("❌ Error: %v\n", err)
		} else {
			fmt.Printf("✅ %s\n", videos[0].Title)
			fmt.Printf("   Views: %d\n", details.ViewCount)
			fmt.Printf("   Likes: %d\n", details.LikeCount)
			fmt.Printf("   Duration: %ds\n", details.DurationSeconds)
		}
	}

	// Test 4: Quota usage
	used, remaining, resetTime := yt.GetQuotaStatus()
	fmt.Println("\n=== Quota Usage ===")
	fmt.Printf("Used: %d units\n", used)
	fmt.Printf("Remaining: %d units\n", remaining)
	fmt.Printf("Resets at: %s\n", resetTime.Format("2006-01-02 15:04 MST"))

	fmt.Println("\n✅ All tests completed!")
}
