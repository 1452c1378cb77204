// Package config loads application settings from the environment with
// sensible defaults, mirroring the deployment surface of the pipeline.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// News selection
	FeedsConfigPath      string
	NewsCount            int     // articles per digest video (typically 3-5)
	ITTechRatio          float64 // target fraction of IT/Tech articles
	MaxCategoryDuplicate int     // per-category cap in a selection
	NewsMaxAge           time.Duration

	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	ScriptStyle       string // professional | casual | educational
	SegmentDuration   int    // target seconds of narration per article
	MaxGeminiRequests int    // per-day script cap (0 = unlimited)
	MaxImageRequests  int    // per-day image prompt cap (0 = unlimited)

	// Scraper settings
	ScrapeMaxArticles int
	ScrapeDelay       time.Duration

	// Video production
	OutputDir  string
	FFmpegPath string
	ShowIntro  bool
	ShowOutro  bool

	// YouTube upload
	EnableUpload         bool
	YouTubeClientSecrets string
	YouTubeTokenFile     string
	YouTubeCategoryID    string
	YouTubePrivacy       string
	YouTubePlaylistID    string

	// Scheduling
	ScheduleEnabled bool
	ScheduleTime    string // "07:00"
	Timezone        string

	// Notifications
	TelegramToken  string
	TelegramChatID string

	// History / persistence
	DatabaseDSN     string // optional Postgres; file history used when empty
	HistoryFilePath string
	HistoryTTLHours int

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		FeedsConfigPath:      "configs/feeds.yaml",
		NewsCount:            5,
		ITTechRatio:          0.75,
		MaxCategoryDuplicate: 2,
		NewsMaxAge:           24 * time.Hour,
		GeminiModel:          "gemini-1.5-flash",
		ScriptStyle:          "professional",
		SegmentDuration:      60,
		MaxGeminiRequests:    20,
		MaxImageRequests:     10,
		ScrapeMaxArticles:    8,
		ScrapeDelay:          500 * time.Millisecond,
		OutputDir:            "output",
		FFmpegPath:           "ffmpeg",
		ShowIntro:            true,
		ShowOutro:            true,
		YouTubeClientSecrets: "configs/client_secrets.json",
		YouTubeTokenFile:     "configs/youtube_token.json",
		YouTubeCategoryID:    "28", // Science & Technology
		YouTubePrivacy:       "public",
		ScheduleTime:         "07:00",
		Timezone:             "Asia/Seoul",
		HistoryFilePath:      "featured_news.json",
		HistoryTTLHours:      72,
		RequestTimeout:       30 * time.Second,
		RetryAttempts:        3,
		RetryDelay:           5 * time.Second,
	}

	// Load from environment
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.FFmpegPath = getEnvOrDefault("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.ScriptStyle = getEnvOrDefault("SCRIPT_STYLE", cfg.ScriptStyle)
	cfg.ScheduleTime = getEnvOrDefault("SCHEDULE_TIME", cfg.ScheduleTime)
	cfg.Timezone = getEnvOrDefault("TIMEZONE", cfg.Timezone)
	cfg.HistoryFilePath = getEnvOrDefault("HISTORY_FILE_PATH", cfg.HistoryFilePath)
	cfg.YouTubeClientSecrets = getEnvOrDefault("YOUTUBE_CLIENT_SECRETS", cfg.YouTubeClientSecrets)
	cfg.YouTubeTokenFile = getEnvOrDefault("YOUTUBE_TOKEN_FILE", cfg.YouTubeTokenFile)
	cfg.YouTubeCategoryID = getEnvOrDefault("YOUTUBE_CATEGORY_ID", cfg.YouTubeCategoryID)
	cfg.YouTubePrivacy = getEnvOrDefault("YOUTUBE_PRIVACY", cfg.YouTubePrivacy)
	cfg.YouTubePlaylistID = getEnvOrDefault("YOUTUBE_PLAYLIST_ID", cfg.YouTubePlaylistID)

	cfg.NewsCount = getEnvIntOrDefault("NEWS_COUNT", cfg.NewsCount)
	cfg.MaxCategoryDuplicate = getEnvIntOrDefault("MAX_CATEGORY_DUPLICATE", cfg.MaxCategoryDuplicate)
	cfg.SegmentDuration = getEnvIntOrDefault("SEGMENT_DURATION", cfg.SegmentDuration)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)
	cfg.MaxImageRequests = getEnvIntOrDefault("MAX_IMAGE_REQUESTS", cfg.MaxImageRequests)
	cfg.ScrapeMaxArticles = getEnvIntOrDefault("SCRAPE_MAX_ARTICLES", cfg.ScrapeMaxArticles)
	cfg.HistoryTTLHours = getEnvIntOrDefault("HISTORY_TTL_HOURS", cfg.HistoryTTLHours)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := os.Getenv("IT_TECH_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ITTechRatio = ratio
		}
	}
	if v := os.Getenv("NEWS_MAX_AGE_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.NewsMaxAge = time.Duration(hours) * time.Hour
		}
	}

	if os.Getenv("ENABLE_YOUTUBE_UPLOAD") == "true" {
		cfg.EnableUpload = true
	}
	if os.Getenv("SCHEDULE_ENABLED") == "true" {
		cfg.ScheduleEnabled = true
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	if os.Getenv("SHOW_INTRO") == "false" {
		cfg.ShowIntro = false
	}
	if os.Getenv("SHOW_OUTRO") == "false" {
		cfg.ShowOutro = false
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.NewsCount <= 0 {
		return fmt.Errorf("NEWS_COUNT must be positive, got %d", c.NewsCount)
	}
	if c.ITTechRatio < 0 || c.ITTechRatio > 1 {
		return fmt.Errorf("IT_TECH_RATIO must be in [0,1], got %v", c.ITTechRatio)
	}
	if c.MaxCategoryDuplicate <= 0 {
		return fmt.Errorf("MAX_CATEGORY_DUPLICATE must be positive, got %d", c.MaxCategoryDuplicate)
	}
	if c.YouTubePrivacy != "public" && c.YouTubePrivacy != "private" && c.YouTubePrivacy != "unlisted" {
		return fmt.Errorf("YOUTUBE_PRIVACY must be public, private or unlisted")
	}
	if _, err := time.Parse("15:04", c.ScheduleTime); err != nil {
		return fmt.Errorf("SCHEDULE_TIME must be HH:MM: %w", err)
	}
	return nil
}
