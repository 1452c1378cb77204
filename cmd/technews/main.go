package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"technews/internal/app"
	"technews/internal/cache"
	"technews/internal/config"
	"technews/internal/gemini"
	"technews/internal/logger"
	"technews/internal/metrics"
	"technews/internal/ratelimit"
	"technews/internal/retry"
	"technews/internal/rss"
	"technews/internal/scheduler"
	"technews/internal/scraper"
	"technews/internal/telegram"
	"technews/internal/video"
	"technews/internal/youtube"
)

func main() {
	logger.Init()
	log := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		log.Error("pipeline setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if !cfg.ScheduleEnabled {
		if _, err := pipeline.Run(ctx); err != nil {
			cleanup()
			log.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	sched, err := scheduler.New(cfg.Timezone, log)
	if err != nil {
		cleanup()
		log.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	err = sched.AddDailyJob("digest", cfg.ScheduleTime, func(jobCtx context.Context) error {
		_, err := pipeline.Run(jobCtx)
		return err
	})
	if err != nil {
		cleanup()
		log.Error("job registration failed", "error", err)
		os.Exit(1)
	}

	sched.Start()
	log.Info("scheduler running", "time", cfg.ScheduleTime, "timezone", cfg.Timezone,
		"next_run", sched.NextRun("digest"))

	<-ctx.Done()
	<-sched.Stop().Done()
	log.Info("shutdown complete")
}

// buildPipeline assembles the collaborators. The returned cleanup
// releases the Gemini client connection and is safe to call twice.
func buildPipeline(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app.App, func(), error) {
	sources, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return nil, nil, err
	}

	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			geminiClient.Close()
		})
	}

	history, err := app.OpenHistory(cfg.DatabaseDSN, cfg.HistoryFilePath, cfg.HistoryTTLHours)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	retryCfg := retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}

	opts := app.Options{
		Sources:  sources,
		Crawler:  rss.NewFetcher(cfg.RequestTimeout, cfg.NewsMaxAge, retryCfg, log),
		Enricher: scraper.New(cfg.RequestTimeout, cfg.ScrapeDelay, log),
		Scripts:  geminiClient,
		Composer: video.NewComposer(cfg.FFmpegPath, cfg.OutputDir, log),
		Notifier: telegram.New(cfg.TelegramToken, cfg.TelegramChatID, retryCfg, log),
		History:  history,
		Cache:    cache.New(),
		Limiter:  ratelimit.New(cfg.MaxGeminiRequests, cfg.MaxImageRequests, 0),
		Metrics:  metrics.Global,
	}

	if cfg.EnableUpload {
		uploader, err := youtube.NewUploader(ctx, youtube.Config{
			ClientSecretsFile: cfg.YouTubeClientSecrets,
			TokenFile:         cfg.YouTubeTokenFile,
			CategoryID:        cfg.YouTubeCategoryID,
			PrivacyStatus:     cfg.YouTubePrivacy,
			PlaylistID:        cfg.YouTubePlaylistID,
		}, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Uploader = uploader
	}

	pipeline, err := app.New(cfg, opts, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return pipeline, cleanup, nil
}

func startMonitoringServer(log *slog.Logger) {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
