package config

import (
	"strings"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	for _, key := range []string{
		"YOUTUBE_API_KEY", "YOUTUBE_USE_OAUTH", "REDIS_ENABLED", "REDIS_PORT",
		"ARCHIVE_DATA_DIR", "ARCHIVE_KEYWORDS", "PIPELINE_VIDEO_WORKERS",
		"API_PORT", "API_ALLOW_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if cfg.YouTube.UseOAuth {
		t.Fatalf("expected OAuth off by default")
	}
	if cfg.Redis.Enabled {
		t.Fatalf("expected Redis off by default")
	}
	if cfg.Redis.Port != 6379 {
		t.Fatalf("expected default Redis port, got %d", cfg.Redis.Port)
	}
	if cfg.Archive.DataDir != "data/archive" {
		t.Fatalf("expected default data dir, got %q", cfg.Archive.DataDir)
	}
	if len(cfg.Archive.Keywords) != 4 || cfg.Archive.Keywords[0] != "trump" {
		t.Fatalf("expected the stock keyword set, got %v", cfg.Archive.Keywords)
	}
	if cfg.Pipeline.VideoWorkers != 2 {
		t.Fatalf("expected default worker count, got %d", cfg.Pipeline.VideoWorkers)
	}
	if cfg.API.Port != 8080 {
		t.Fatalf("expected default API port, got %d", cfg.API.Port)
	}
	if len(cfg.API.AllowOrigins) != 1 || cfg.API.AllowOrigins[0] != "*" {
		t.Fatalf("expected wildcard origins by default, got %v", cfg.API.AllowOrigins)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("YOUTUBE_USE_OAUTH", "true")
	t.Setenv("REDIS_ENABLED", "1")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ARCHIVE_KEYWORDS", "speech, rally , ,address")
	t.Setenv("PIPELINE_VIDEO_WORKERS", "4")
	t.Setenv("API_ALLOW_ORIGINS", "http://localhost:3000,https://example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if cfg.YouTube.APIKey != "yt-key" || !cfg.YouTube.UseOAuth {
		t.Fatalf("unexpected youtube config: %+v", cfg.YouTube)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Port != 6380 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if len(cfg.Archive.Keywords) != 3 {
		t.Fatalf("expected trimmed keywords without blanks, got %v", cfg.Archive.Keywords)
	}
	if cfg.Archive.Keywords[1] != "rally" {
		t.Fatalf("expected surrounding spaces trimmed, got %q", cfg.Archive.Keywords[1])
	}
	if cfg.Pipeline.VideoWorkers != 4 {
		t.Fatalf("expected configured worker count, got %d", cfg.Pipeline.VideoWorkers)
	}
	if len(cfg.API.AllowOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.API.AllowOrigins)
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("REDIS_PORT", "not-a-number")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if cfg.Redis.Port != 6379 {
		t.Fatalf("expected malformed port to fall back, got %d", cfg.Redis.Port)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("expected malformed bool to fall back")
	}
}

func TestValidateRequiresPipelineCredentials(t *testing.T) {
	cfg := &Config{
		Gemini:  GeminiConfig{APIKey: "g-key"},
		Archive: ArchiveConfig{Keywords: []string{"speech"}, SourcesFile: "sources.json"},
	}

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "YOUTUBE_API_KEY") {
		t.Fatalf("expected youtube credential error, got %v", err)
	}

	cfg.YouTube.UseOAuth = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected OAuth mode to satisfy youtube credentials, got %v", err)
	}

	cfg.Gemini.APIKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected gemini key error, got %v", err)
	}

	cfg.Gemini.APIKey = "g-key"
	cfg.Archive.Keywords = nil
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ARCHIVE_KEYWORDS") {
		t.Fatalf("expected keywords error, got %v", err)
	}
}
