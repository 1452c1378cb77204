package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"technews/internal/cache"
	"technews/internal/config"
	"technews/internal/gemini"
	"technews/internal/metrics"
	"technews/internal/news"
	"technews/internal/ratelimit"
	"technews/internal/retry"
	"technews/internal/rss"
	"technews/internal/selector"
	"technews/internal/storage"
	"technews/internal/video"
	"technews/internal/youtube"
)

// scriptCacheTTL keeps generated scripts around long enough for a rerun
// of a failed pipeline to skip paid API calls.
const scriptCacheTTL = 24 * time.Hour

// Crawler fetches the raw article pool.
type Crawler interface {
	FetchAll(ctx context.Context, sources []rss.FeedSource) (*news.Collection, error)
}

// Enricher fills in full article bodies before script generation.
type Enricher interface {
	EnrichBatch(ctx context.Context, articles []*news.Article, minWords, maxFetch int)
}

// ScriptGenerator produces anchor scripts from articles.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, article *news.Article, style gemini.ScriptStyle, targetSeconds int) (*gemini.GeneratedScript, error)
}

// ImagePrompter is an optional ScriptGenerator capability: a scene
// description for the segment's background image. Segments render with
// a plain background when the generator does not provide it.
type ImagePrompter interface {
	GenerateImagePrompt(ctx context.Context, article *news.Article) (string, error)
}

// Composer renders a project into a video file.
type Composer interface {
	Compose(ctx context.Context, project *video.Project) error
}

// Uploader publishes the rendered video.
type Uploader interface {
	Upload(ctx context.Context, videoPath string, topics []string) (*youtube.UploadResult, error)
}

// Notifier reports run results to an operator channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Enabled() bool
}

// App wires the daily digest pipeline: crawl, score, select, script,
// render, upload, notify.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	sources  []rss.FeedSource
	crawler  Crawler
	enricher Enricher
	scripts  ScriptGenerator
	composer Composer
	uploader Uploader
	notifier Notifier
	history  History
	selector *selector.Selector
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
}

// Options carries the pipeline collaborators. Uploader and Notifier may
// be nil when those stages are disabled.
type Options struct {
	Sources  []rss.FeedSource
	Crawler  Crawler
	Enricher Enricher
	Scripts  ScriptGenerator
	Composer Composer
	Uploader Uploader
	Notifier Notifier
	History  History
	Cache    *cache.Cache
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
}

// New assembles the pipeline.
func New(cfg *config.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Crawler == nil || opts.Scripts == nil || opts.Composer == nil || opts.History == nil {
		return nil, fmt.Errorf("crawler, script generator, composer and history are required")
	}
	if opts.Cache == nil {
		opts.Cache = cache.New()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Global
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		sources:  opts.Sources,
		crawler:  opts.Crawler,
		enricher: opts.Enricher,
		scripts:  opts.Scripts,
		composer: opts.Composer,
		uploader: opts.Uploader,
		notifier: opts.Notifier,
		history:  opts.History,
		selector: selector.New(cfg.ITTechRatio, cfg.MaxCategoryDuplicate, logger),
		cache:    opts.Cache,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
	}, nil
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	Selected  []*news.Article
	Report    selector.Report
	Scripts   int
	VideoPath string
	VideoURL  string
	Duration  time.Duration
}

// Run executes the full digest pipeline once.
func (a *App) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result, err := a.run(ctx)

	a.metrics.RecordRunDuration(time.Since(start))
	if err != nil {
		a.metrics.SetError(err.Error())
		a.notify(ctx, formatFailure(err))
		return nil, err
	}

	result.Duration = time.Since(start)
	a.metrics.SetLastRun()
	a.notify(ctx, formatReport(result))
	return result, nil
}

func (a *App) run(ctx context.Context) (*RunResult, error) {
	// 1. Crawl.
	pool, err := a.crawler.FetchAll(ctx, a.sources)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	a.metrics.AddArticlesCrawled(pool.Total)
	a.logger.Info("pool crawled", "articles", pool.Total)

	// 2. Drop stories already featured in a recent digest.
	pool = a.filterFeatured(pool)

	// 3. Score and select.
	news.NewScorer().ScoreAll(pool)
	selected, err := a.selector.Select(pool, a.cfg.NewsCount)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no articles available for digest")
	}
	a.metrics.AddArticlesSelected(len(selected))

	report := a.selector.Validate(selected)
	for _, w := range report.Warnings {
		a.logger.Warn("selection warning", "warning", w)
	}
	if !report.Valid {
		return nil, fmt.Errorf("selection invalid: %v", report.Errors)
	}

	// 4. Pull full article bodies for thin RSS entries.
	if a.enricher != nil {
		a.enricher.EnrichBatch(ctx, selected, 100, a.cfg.ScrapeMaxArticles)
	}

	// 5. Generate scripts and assemble the project.
	project := video.NewProject(youtube.BuildTitle(time.Now()), video.ProjectConfig{
		Width:         video.DefaultWidth,
		Height:        video.DefaultHeight,
		FPS:           video.DefaultFPS,
		ShowIntro:     a.cfg.ShowIntro,
		ShowOutro:     a.cfg.ShowOutro,
		IntroDuration: video.DefaultIntroDuration,
		OutroDuration: video.DefaultOutroDuration,
	})

	scripts := 0
	for _, article := range selected {
		script, err := a.generateScript(ctx, article)
		if err != nil {
			a.metrics.IncrementScriptFailures()
			a.logger.Error("script generation failed", "title", article.Title, "error", err)
			continue
		}
		scripts++

		duration := script.EstimatedDuration
		if duration <= 0 {
			duration = float64(a.cfg.SegmentDuration)
		}
		project.AddSegment(&video.Segment{
			SegmentID:   a.history.GenerateHash(article.Title, article.URL),
			Title:       article.Title,
			Script:      script,
			ImagePrompt: a.generateImagePrompt(ctx, article),
			Duration:    duration,
		})
	}
	if scripts == 0 {
		return nil, fmt.Errorf("no scripts generated for %d selected articles", len(selected))
	}

	// 6. Render.
	if err := a.composer.Compose(ctx, project); err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	a.metrics.IncrementVideosProduced()
	if _, err := project.SaveManifest(a.cfg.OutputDir); err != nil {
		a.logger.Warn("manifest save failed", "project", project.ProjectID, "error", err)
	}

	// 7. Record featured stories so reruns skip them.
	a.markFeatured(selected)

	result := &RunResult{
		Selected:  selected,
		Report:    report,
		Scripts:   scripts,
		VideoPath: project.OutputPath,
	}

	// 8. Upload.
	if a.cfg.EnableUpload && a.uploader != nil {
		topics := make([]string, 0, len(selected))
		for _, article := range selected {
			topics = append(topics, article.Title)
		}
		var upload *youtube.UploadResult
		err := retry.WithRetry(ctx, a.retryConfig(), func() error {
			var uploadErr error
			upload, uploadErr = a.uploader.Upload(ctx, project.OutputPath, topics)
			return uploadErr
		})
		if err != nil {
			// The rendered video is on disk; report the failure but
			// keep the run's output.
			a.logger.Error("upload failed", "path", project.OutputPath, "error", err)
		} else {
			result.VideoURL = upload.VideoURL
			a.metrics.IncrementUploadsCompleted()
		}
	}

	// 9. Persist the produced-video record when the backend keeps one.
	a.saveVideoRecord(project, result)

	return result, nil
}

// retryConfig converts the configured retry knobs, falling back to a
// single attempt so a zero config never skips the operation entirely.
func (a *App) retryConfig() retry.Config {
	cfg := retry.Config{
		MaxAttempts: a.cfg.RetryAttempts,
		Delay:       a.cfg.RetryDelay,
		Backoff:     true,
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return cfg
}

// saveVideoRecord writes the run's outcome to the history backend. Only
// the Postgres store keeps video records; the file store does not.
func (a *App) saveVideoRecord(project *video.Project, result *RunResult) {
	store, ok := a.history.(VideoStore)
	if !ok {
		return
	}
	rec := storage.VideoRecord{
		ProjectID:  project.ProjectID,
		Title:      project.Title,
		Path:       project.OutputPath,
		YouTubeURL: result.VideoURL,
		NewsCount:  len(result.Selected),
		Duration:   project.TotalDuration(),
		CreatedAt:  time.Now(),
	}
	if err := store.SaveVideo(rec); err != nil {
		a.logger.Warn("video record save failed", "project", project.ProjectID, "error", err)
	}
}

// generateScript consults the cache and the daily rate limit before
// hitting the API.
func (a *App) generateScript(ctx context.Context, article *news.Article) (*gemini.GeneratedScript, error) {
	key := a.cache.GenerateKey(article.Title, article.Content)
	if cached, ok := a.cache.Get(key); ok {
		if script, ok := cached.(*gemini.GeneratedScript); ok {
			if a.limiter != nil {
				a.limiter.RecordCacheHit()
			}
			a.logger.Debug("script cache hit", "title", article.Title)
			return script, nil
		}
	}

	if a.limiter != nil {
		if err := a.limiter.UseScript(); err != nil {
			return nil, err
		}
	}

	script, err := a.scripts.GenerateScript(ctx, article, gemini.ScriptStyle(a.cfg.ScriptStyle), a.cfg.SegmentDuration)
	if err != nil {
		return nil, err
	}
	a.metrics.IncrementScriptsGenerated()
	a.cache.Set(key, script, scriptCacheTTL)
	return script, nil
}

// generateImagePrompt asks the generator for a background scene
// description. Failures only cost the segment its generated backdrop,
// so they are logged and swallowed.
func (a *App) generateImagePrompt(ctx context.Context, article *news.Article) string {
	prompter, ok := a.scripts.(ImagePrompter)
	if !ok {
		return ""
	}

	key := a.cache.GenerateKey("image:"+article.Title, article.URL)
	if cached, ok := a.cache.Get(key); ok {
		if prompt, ok := cached.(string); ok {
			if a.limiter != nil {
				a.limiter.RecordCacheHit()
			}
			return prompt
		}
	}

	if a.limiter != nil {
		if err := a.limiter.UseImage(); err != nil {
			a.logger.Warn("image prompt skipped", "title", article.Title, "error", err)
			return ""
		}
	}

	prompt, err := prompter.GenerateImagePrompt(ctx, article)
	if err != nil {
		a.logger.Warn("image prompt generation failed", "title", article.Title, "error", err)
		return ""
	}
	a.cache.Set(key, prompt, scriptCacheTTL)
	return prompt
}

func (a *App) filterFeatured(pool *news.Collection) *news.Collection {
	fresh := news.NewCollection()
	for _, article := range pool.Articles {
		hash := a.history.GenerateHash(article.Title, article.URL)
		if a.history.WasFeatured(hash) {
			a.metrics.IncrementDuplicatesFiltered()
			continue
		}
		fresh.Add(article)
	}
	if dropped := pool.Total - fresh.Total; dropped > 0 {
		a.logger.Info("already-featured stories dropped", "dropped", dropped, "remaining", fresh.Total)
	}
	return fresh
}

func (a *App) markFeatured(selected []*news.Article) {
	for _, article := range selected {
		hash := a.history.GenerateHash(article.Title, article.URL)
		if err := a.history.MarkFeatured(hash, article.Title, article.URL, string(article.Category), string(article.Source)); err != nil {
			a.logger.Warn("history mark failed", "title", article.Title, "error", err)
		}
	}
	if err := a.history.Save(); err != nil {
		a.logger.Warn("history save failed", "error", err)
	}
}

func (a *App) notify(ctx context.Context, text string) {
	if a.notifier == nil || !a.notifier.Enabled() {
		return
	}
	if err := a.notifier.Send(ctx, text); err != nil {
		a.logger.Warn("notification failed", "error", err)
	}
}
