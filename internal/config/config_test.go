package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		GeminiAPIKey:         "key",
		NewsCount:            5,
		ITTechRatio:          0.75,
		MaxCategoryDuplicate: 2,
		YouTubePrivacy:       "public",
		ScheduleTime:         "07:00",
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.GeminiAPIKey = "" }},
		{"zero count", func(c *Config) { c.NewsCount = 0 }},
		{"negative count", func(c *Config) { c.NewsCount = -1 }},
		{"ratio above one", func(c *Config) { c.ITTechRatio = 1.5 }},
		{"negative ratio", func(c *Config) { c.ITTechRatio = -0.1 }},
		{"zero category cap", func(c *Config) { c.MaxCategoryDuplicate = 0 }},
		{"bad privacy", func(c *Config) { c.YouTubePrivacy = "secret" }},
		{"bad schedule time", func(c *Config) { c.ScheduleTime = "7am" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("%s: expected validation error", tt.name)
			}
		})
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("NEWS_COUNT", "3")
	t.Setenv("IT_TECH_RATIO", "0.6")
	t.Setenv("NEWS_MAX_AGE_HOURS", "12")
	t.Setenv("SCHEDULE_ENABLED", "true")
	t.Setenv("MAX_IMAGE_REQUESTS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.NewsCount != 3 {
		t.Errorf("NewsCount = %d", cfg.NewsCount)
	}
	if cfg.ITTechRatio != 0.6 {
		t.Errorf("ITTechRatio = %f", cfg.ITTechRatio)
	}
	if cfg.NewsMaxAge != 12*time.Hour {
		t.Errorf("NewsMaxAge = %v", cfg.NewsMaxAge)
	}
	if !cfg.ScheduleEnabled {
		t.Error("ScheduleEnabled not set")
	}
	if cfg.MaxImageRequests != 4 {
		t.Errorf("MaxImageRequests = %d", cfg.MaxImageRequests)
	}

	// Untouched fields keep their defaults.
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.MaxCategoryDuplicate != 2 {
		t.Errorf("MaxCategoryDuplicate = %d", cfg.MaxCategoryDuplicate)
	}
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}
