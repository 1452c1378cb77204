package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"technews/internal/news"
)

// Scraper fetches full article bodies for articles whose RSS entry only
// carries a teaser.
type Scraper struct {
	client *http.Client
	delay  time.Duration
	logger *slog.Logger
}

// New builds a scraper. delay is the pause between consecutive requests
// in a batch, so batch extraction stays polite to the source sites.
func New(timeout, delay time.Duration, logger *slog.Logger) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		delay:  delay,
		logger: logger,
	}
}

// Extract downloads one article page and returns its cleaned body text.
func (s *Scraper) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; technews/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	content := cleanContent(extractContentBySite(doc, url))
	if content == "" {
		return "", fmt.Errorf("no content extracted from %s", url)
	}
	return content, nil
}

// EnrichBatch fills in Content and WordCount for articles whose RSS
// body is shorter than minWords. At most maxFetch pages are downloaded
// per batch (0 means no cap). Failures are logged per article and do
// not abort the batch.
func (s *Scraper) EnrichBatch(ctx context.Context, articles []*news.Article, minWords, maxFetch int) {
	fetched := 0
	for _, a := range articles {
		if a.WordCount >= minWords {
			continue
		}
		if maxFetch > 0 && fetched >= maxFetch {
			s.logger.Warn("scrape batch cap reached", "cap", maxFetch)
			return
		}
		if fetched > 0 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return
			}
		}
		fetched++

		content, err := s.Extract(ctx, a.URL)
		if err != nil {
			s.logger.Warn("scrape failed", "url", a.URL, "error", err)
			continue
		}
		a.Content = content
		a.WordCount = len(strings.Fields(content))
		a.ReadingTime = news.EstimateReadingTime(a.WordCount)
		s.logger.Debug("scraped article", "url", a.URL, "words", a.WordCount)
	}
}

func extractContentBySite(doc *goquery.Document, url string) string {
	switch {
	case strings.Contains(url, "techcrunch.com"):
		return collectParagraphs(doc, []string{
			".entry-content p",
			".article-content p",
			"article p",
		}, 1)
	case strings.Contains(url, "theverge.com"):
		return collectParagraphs(doc, []string{
			".duet--article--article-body-component p",
			".c-entry-content p",
			"article p",
		}, 1)
	case strings.Contains(url, "etnews.com"):
		return collectParagraphs(doc, []string{
			".article_body p",
			"#articleBody p",
			".news_body p",
			"article p",
		}, 1)
	case strings.Contains(url, "zdnet.co.kr"):
		return collectParagraphs(doc, []string{
			".view_cont p",
			"#articleBody p",
			".article_view p",
			"article p",
		}, 1)
	default:
		return collectParagraphs(doc, []string{
			"article p",
			".article p",
			".content p",
			".post-content p",
			".entry-content p",
			"main p",
			"#content p",
			"p",
		}, 3)
	}
}

// collectParagraphs walks the selector list and stops at the first one
// that yields at least minParagraphs usable paragraphs.
func collectParagraphs(doc *goquery.Document, selectors []string, minParagraphs int) string {
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= minParagraphs {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}

var junkIndicators = []string{
	"cookie", "subscribe to our newsletter", "sign up for",
	"advertisement", "sponsored", "follow us on", "share this article",
	"read more:", "related:", "click here",
	"구독", "광고", "무단전재", "재배포 금지",
}

// cleanContent drops boilerplate lines and collapses whitespace.
func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		junk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(lower, indicator) {
				junk = true
				break
			}
		}
		if junk {
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n\n"))
}
