package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	YouTube  YouTubeConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Redis    RedisConfig
	Archive  ArchiveConfig
	Pipeline PipelineConfig
	API      APIConfig
	Logging  LoggingConfig
}

type YouTubeConfig struct {
	APIKey            string
	UseOAuth          bool
	ClientSecretsFile string
	TokenFile         string
}

type GeminiConfig struct {
	APIKey string
}

type OpenAIConfig struct {
	APIKey         string
	EnableFallback bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type ArchiveConfig struct {
	DataDir             string
	AudioWorkDir        string
	SourcesFile         string
	Keywords            []string
	MaxVideosPerChannel int
}

type PipelineConfig struct {
	VideoWorkers int
}

type APIConfig struct {
	Port         int
	AllowOrigins []string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		YouTube: YouTubeConfig{
			APIKey:            getEnv("YOUTUBE_API_KEY", ""),
			UseOAuth:          getEnvBool("YOUTUBE_USE_OAUTH", false),
			ClientSecretsFile: getEnv("YOUTUBE_CLIENT_SECRETS_FILE", "client_secrets.json"),
			TokenFile:         getEnv("YOUTUBE_TOKEN_FILE", "token.json"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Archive: ArchiveConfig{
			DataDir:             getEnv("ARCHIVE_DATA_DIR", "data/archive"),
			AudioWorkDir:        getEnv("ARCHIVE_AUDIO_WORK_DIR", "data/audio"),
			SourcesFile:         getEnv("ARCHIVE_SOURCES_FILE", "sources.json"),
			Keywords:            parseCommaSeparated(getEnv("ARCHIVE_KEYWORDS", "trump,donald trump,president trump,former president trump")),
			MaxVideosPerChannel: getEnvInt("ARCHIVE_MAX_VIDEOS_PER_CHANNEL", 50),
		},
		Pipeline: PipelineConfig{
			VideoWorkers: getEnvInt("PIPELINE_VIDEO_WORKERS", 2),
		},
		API: APIConfig{
			Port:         getEnvInt("API_PORT", 8080),
			AllowOrigins: parseCommaSeparated(getEnv("API_ALLOW_ORIGINS", "*")),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/archiver.log"),
		},
	}

	return cfg, nil
}

// Validate checks the settings the ingestion pipeline cannot run
// without. Read-only entrypoints (query API, UI data tool) skip it,
// since they need no credentials.
func (c *Config) Validate() error {
	if c.YouTube.APIKey == "" && !c.YouTube.UseOAuth {
		return fmt.Errorf("YOUTUBE_API_KEY is required unless YOUTUBE_USE_OAUTH is set")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if len(c.Archive.Keywords) == 0 {
		return fmt.Errorf("ARCHIVE_KEYWORDS is required")
	}
	if c.Archive.SourcesFile == "" {
		return fmt.Errorf("ARCHIVE_SOURCES_FILE is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
