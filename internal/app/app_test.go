package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"technews/internal/cache"
	"technews/internal/config"
	"technews/internal/gemini"
	"technews/internal/metrics"
	"technews/internal/news"
	"technews/internal/ratelimit"
	"technews/internal/rss"
	"technews/internal/storage"
	"technews/internal/video"
	"technews/internal/youtube"
)

type stubCrawler struct {
	pool *news.Collection
	err  error
}

func (s *stubCrawler) FetchAll(_ context.Context, _ []rss.FeedSource) (*news.Collection, error) {
	return s.pool, s.err
}

type stubScripts struct {
	calls int
	fail  map[string]bool
}

func (s *stubScripts) GenerateScript(_ context.Context, a *news.Article, _ gemini.ScriptStyle, target int) (*gemini.GeneratedScript, error) {
	s.calls++
	if s.fail[a.Title] {
		return nil, fmt.Errorf("model refused")
	}
	return &gemini.GeneratedScript{
		Title:             a.Title,
		English:           "Today: " + a.Title,
		WordCount:         150,
		EstimatedDuration: float64(target),
	}, nil
}

// stubPrompterScripts additionally serves background scene prompts.
type stubPrompterScripts struct {
	stubScripts
	prompts int
}

func (s *stubPrompterScripts) GenerateImagePrompt(_ context.Context, a *news.Article) (string, error) {
	s.prompts++
	return "A dim server room lit by rows of status LEDs", nil
}

type stubEnricher struct {
	minWords int
	maxFetch int
}

func (s *stubEnricher) EnrichBatch(_ context.Context, _ []*news.Article, minWords, maxFetch int) {
	s.minWords = minWords
	s.maxFetch = maxFetch
}

type stubComposer struct {
	rendered    int
	lastTitle   string
	lastProject *video.Project
}

func (s *stubComposer) Compose(_ context.Context, p *video.Project) error {
	s.rendered++
	s.lastTitle = p.Title
	s.lastProject = p
	p.OutputPath = filepath.Join("output", p.ProjectID+".mp4")
	p.IsRendered = true
	return nil
}

type stubUploader struct {
	calls    int
	failures int // first N calls error
}

func (s *stubUploader) Upload(_ context.Context, path string, topics []string) (*youtube.UploadResult, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, fmt.Errorf("quota exceeded")
	}
	return &youtube.UploadResult{VideoID: "vid123", VideoURL: "https://www.youtube.com/watch?v=vid123"}, nil
}

// videoStoreHistory is a file history that also records produced videos,
// like the Postgres backend does.
type videoStoreHistory struct {
	*storage.FileHistory
	records []storage.VideoRecord
}

func (h *videoStoreHistory) SaveVideo(rec storage.VideoRecord) error {
	h.records = append(h.records, rec)
	return nil
}

type stubNotifier struct {
	messages []string
}

func (s *stubNotifier) Send(_ context.Context, text string) error {
	s.messages = append(s.messages, text)
	return nil
}

func (s *stubNotifier) Enabled() bool { return true }

func testPool(t *testing.T, n int) *news.Collection {
	t.Helper()
	pool := news.NewCollection()
	categories := []news.Category{
		news.CategoryAIML, news.CategorySecurity, news.CategorySoftwareCloud,
		news.CategoryHardware, news.CategoryMobile, news.CategoryTechGeneral,
	}
	for i := 0; i < n; i++ {
		a, err := news.NewArticle(
			fmt.Sprintf("Story %d", i),
			fmt.Sprintf("https://example.com/%d", i),
			news.SourceTechCrunch,
			time.Now().Add(-2*time.Hour),
		)
		if err != nil {
			t.Fatalf("make article: %v", err)
		}
		a.Category = categories[i%len(categories)]
		a.Summary = "summary"
		a.Content = strings.Repeat("word ", 400)
		a.WordCount = 400
		pool.Add(a)
	}
	return pool
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		NewsCount:            3,
		ITTechRatio:          0.75,
		MaxCategoryDuplicate: 2,
		SegmentDuration:      60,
		ScriptStyle:          "professional",
		OutputDir:            t.TempDir(),
		HistoryTTLHours:      72,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts Options) *App {
	t.Helper()
	if opts.History == nil {
		opts.History = storage.NewFileHistory(filepath.Join(t.TempDir(), "history.json"), cfg.HistoryTTLHours)
	}
	if opts.Metrics == nil {
		opts.Metrics = &metrics.Metrics{}
	}
	if opts.Cache == nil {
		opts.Cache = cache.New()
	}
	a, err := New(cfg, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestRunFullPipeline(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.EnableUpload = true

	composer := &stubComposer{}
	uploader := &stubUploader{}
	notifier := &stubNotifier{}
	scripts := &stubScripts{}

	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  scripts,
		Composer: composer,
		Uploader: uploader,
		Notifier: notifier,
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Selected) != cfg.NewsCount {
		t.Errorf("selected %d articles, want %d", len(result.Selected), cfg.NewsCount)
	}
	if result.Scripts != cfg.NewsCount {
		t.Errorf("scripts = %d, want %d", result.Scripts, cfg.NewsCount)
	}
	if composer.rendered != 1 {
		t.Errorf("composer called %d times", composer.rendered)
	}
	if uploader.calls != 1 || result.VideoURL == "" {
		t.Errorf("upload calls = %d, url = %q", uploader.calls, result.VideoURL)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "produced") {
		t.Errorf("notifications = %v", notifier.messages)
	}
}

func TestRunSkipsFeaturedStories(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	history := storage.NewFileHistory(filepath.Join(t.TempDir(), "history.json"), cfg.HistoryTTLHours)

	pool := testPool(t, 10)
	// Pre-mark one pool story as already featured.
	first := pool.Articles[0]
	hash := history.GenerateHash(first.Title, first.URL)
	if err := history.MarkFeatured(hash, first.Title, first.URL, string(first.Category), string(first.Source)); err != nil {
		t.Fatalf("MarkFeatured: %v", err)
	}

	m := &metrics.Metrics{}
	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: pool},
		Scripts:  &stubScripts{},
		Composer: &stubComposer{},
		History:  history,
		Metrics:  m,
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, article := range result.Selected {
		if article.URL == first.URL {
			t.Errorf("already-featured story selected again: %s", article.URL)
		}
	}

	stats := m.GetStats()
	if stats["duplicates_filtered"].(int64) != 1 {
		t.Errorf("duplicates_filtered = %v", stats["duplicates_filtered"])
	}
}

func TestRunMarksSelectedAsFeatured(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	history := storage.NewFileHistory(filepath.Join(t.TempDir(), "history.json"), cfg.HistoryTTLHours)

	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  &stubScripts{},
		Composer: &stubComposer{},
		History:  history,
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, article := range result.Selected {
		hash := history.GenerateHash(article.Title, article.URL)
		if !history.WasFeatured(hash) {
			t.Errorf("selected story not recorded in history: %s", article.Title)
		}
	}
}

func TestRunContinuesPastScriptFailure(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	scripts := &stubScripts{fail: map[string]bool{"Story 0": true}}

	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  scripts,
		Composer: &stubComposer{},
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	selectedFailing := false
	for _, article := range result.Selected {
		if article.Title == "Story 0" {
			selectedFailing = true
		}
	}
	want := len(result.Selected)
	if selectedFailing {
		want--
	}
	if result.Scripts != want {
		t.Errorf("scripts = %d, want %d", result.Scripts, want)
	}
}

func TestRunFailsWhenCrawlFails(t *testing.T) {
	t.Parallel()

	notifier := &stubNotifier{}
	a := newTestApp(t, testConfig(t), Options{
		Crawler:  &stubCrawler{err: fmt.Errorf("network down")},
		Scripts:  &stubScripts{},
		Composer: &stubComposer{},
		Notifier: notifier,
	})

	if _, err := a.Run(context.Background()); err == nil {
		t.Fatal("expected crawl error")
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "failed") {
		t.Errorf("failure notification = %v", notifier.messages)
	}
}

func TestRunAttachesImagePrompts(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	scripts := &stubPrompterScripts{}
	composer := &stubComposer{}
	limiter := ratelimit.New(0, 2, 0)

	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  scripts,
		Composer: composer,
		Limiter:  limiter,
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Selected) != 3 {
		t.Fatalf("selected = %d, want 3", len(result.Selected))
	}

	withPrompt := 0
	for _, seg := range composer.lastProject.Segments {
		if seg.ImagePrompt != "" {
			withPrompt++
		}
	}
	// The image budget of 2 covers two of the three segments; the third
	// renders with a plain background.
	if withPrompt != 2 {
		t.Errorf("segments with prompt = %d, want 2", withPrompt)
	}
	if scripts.prompts != 2 {
		t.Errorf("prompt calls = %d, want 2", scripts.prompts)
	}
	if used := limiter.Stats()["image_used"].(int); used != 2 {
		t.Errorf("image_used = %d, want 2", used)
	}
}

func TestRunWithoutPrompterLeavesSegmentsPlain(t *testing.T) {
	t.Parallel()

	composer := &stubComposer{}
	a := newTestApp(t, testConfig(t), Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  &stubScripts{},
		Composer: composer,
	})

	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, seg := range composer.lastProject.Segments {
		if seg.ImagePrompt != "" {
			t.Errorf("segment %s has prompt %q from a generator without that capability", seg.SegmentID, seg.ImagePrompt)
		}
	}
}

func TestRunSavesVideoRecord(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.EnableUpload = true

	history := &videoStoreHistory{
		FileHistory: storage.NewFileHistory(filepath.Join(t.TempDir(), "history.json"), cfg.HistoryTTLHours),
	}

	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  &stubScripts{},
		Composer: &stubComposer{},
		Uploader: &stubUploader{},
		History:  history,
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(history.records) != 1 {
		t.Fatalf("video records = %d, want 1", len(history.records))
	}
	rec := history.records[0]
	if rec.ProjectID == "" || rec.Path != result.VideoPath {
		t.Errorf("record = %+v", rec)
	}
	if rec.YouTubeURL != result.VideoURL {
		t.Errorf("record url = %q, want %q", rec.YouTubeURL, result.VideoURL)
	}
	if rec.NewsCount != len(result.Selected) {
		t.Errorf("record news count = %d, want %d", rec.NewsCount, len(result.Selected))
	}
}

func TestRunRetriesUpload(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.EnableUpload = true
	cfg.RetryAttempts = 3
	cfg.RetryDelay = time.Millisecond

	uploader := &stubUploader{failures: 2}
	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  &stubScripts{},
		Composer: &stubComposer{},
		Uploader: uploader,
	})

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if uploader.calls != 3 {
		t.Errorf("upload attempts = %d, want 3", uploader.calls)
	}
	if result.VideoURL == "" {
		t.Error("upload should succeed on the final attempt")
	}
}

func TestRunPassesScrapeCapToEnricher(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.ScrapeMaxArticles = 5

	enricher := &stubEnricher{}
	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Enricher: enricher,
		Scripts:  &stubScripts{},
		Composer: &stubComposer{},
	})

	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if enricher.maxFetch != 5 {
		t.Errorf("enricher maxFetch = %d, want 5", enricher.maxFetch)
	}
	if enricher.minWords != 100 {
		t.Errorf("enricher minWords = %d, want 100", enricher.minWords)
	}
}

func TestRunUsesScriptCache(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	scripts := &stubScripts{}
	shared := cache.New()

	pool1 := testPool(t, 10)
	a := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: pool1},
		Scripts:  scripts,
		Composer: &stubComposer{},
		Cache:    shared,
	})
	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstCalls := scripts.calls

	// Second app with a fresh history but the shared cache: the same
	// stories get selected and their scripts come from cache.
	b := newTestApp(t, cfg, Options{
		Crawler:  &stubCrawler{pool: testPool(t, 10)},
		Scripts:  scripts,
		Composer: &stubComposer{},
		Cache:    shared,
	})
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if scripts.calls != firstCalls {
		t.Errorf("generator called %d more times despite cache", scripts.calls-firstCalls)
	}
}
