package rss

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"technews/internal/news"
	"technews/internal/retry"
)

// Fetcher downloads configured RSS feeds and turns their items into
// classified articles.
type Fetcher struct {
	parser *gofeed.Parser
	maxAge time.Duration
	retry  retry.Config
	logger *slog.Logger
}

// NewFetcher builds a fetcher that drops items older than maxAge.
// maxAge <= 0 disables the age window. Each feed download is retried
// per retryCfg; MaxAttempts <= 0 means a single attempt.
func NewFetcher(timeout, maxAge time.Duration, retryCfg retry.Config, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if retryCfg.MaxAttempts <= 0 {
		retryCfg.MaxAttempts = 1
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "technews/1.0"
	if timeout > 0 {
		parser.Client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{parser: parser, maxAge: maxAge, retry: retryCfg, logger: logger}
}

// FetchAll downloads every enabled feed and merges the results into one
// collection, deduplicated by URL. A failing feed is logged and
// skipped; the crawl only errors when every feed fails.
func (f *Fetcher) FetchAll(ctx context.Context, sources []FeedSource) (*news.Collection, error) {
	pool := news.NewCollection()
	seen := make(map[string]bool)
	successCount := 0

	for _, src := range sources {
		if !src.IsEnabled() {
			continue
		}

		var feed *gofeed.Feed
		err := retry.WithRetry(ctx, f.retry, func() error {
			var parseErr error
			feed, parseErr = f.parser.ParseURLWithContext(src.URL, ctx)
			return parseErr
		})
		if err != nil {
			f.logger.Error("rss feed failed", "source", src.Name, "url", src.URL, "error", err)
			continue
		}
		successCount++

		added := 0
		for _, item := range feed.Items {
			article, err := f.buildArticle(src, item)
			if err != nil {
				continue
			}
			if article == nil || seen[article.URL] {
				continue
			}
			seen[article.URL] = true
			pool.Add(article)
			added++
		}
		f.logger.Info("rss feed loaded", "source", src.Name, "items", len(feed.Items), "kept", added)
	}

	f.logger.Info("rss crawl done", "feeds_ok", successCount, "feeds_total", len(sources), "articles", pool.Total)
	if successCount == 0 && len(sources) > 0 {
		return pool, ErrAllFeedsFailed
	}
	return pool, nil
}

// ErrAllFeedsFailed is returned when not a single feed could be fetched.
var ErrAllFeedsFailed = errors.New("rss: all feeds failed")

func (f *Fetcher) buildArticle(src FeedSource, item *gofeed.Item) (*news.Article, error) {
	published := itemTime(item)
	if f.maxAge > 0 && time.Since(published) > f.maxAge {
		return nil, nil
	}

	article, err := news.NewArticle(item.Title, item.Link, src.Source(), published)
	if err != nil {
		return nil, err
	}

	article.Summary = stripHTML(item.Description)
	article.Content = stripHTML(item.Content)
	if article.Content == "" {
		article.Content = article.Summary
	}
	article.WordCount = countWords(article.Content)
	article.ReadingTime = news.EstimateReadingTime(article.WordCount)

	if len(item.Authors) > 0 {
		article.Author = item.Authors[0].Name
	}
	if item.Image != nil {
		article.ImageURL = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				article.ImageURL = enc.URL
				break
			}
		}
	}

	article.Category = ClassifyCategory(src.Source(), item.Categories, article.Title, article.Summary)
	article.Importance = ClassifyImportance(article.Title)
	return article, nil
}

// itemTime prefers the published timestamp and falls back to updated,
// then to now so undated items still land in the age window.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now()
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacesPattern = regexp.MustCompile(`\s+`)
)

// stripHTML flattens markup in RSS descriptions into plain text.
func stripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(s)
	return strings.TrimSpace(spacesPattern.ReplaceAllString(s, " "))
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
