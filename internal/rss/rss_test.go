package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"technews/internal/retry"
)

func feedXML(title string, items int) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>` + title + `</title>`
	for i := 0; i < items; i++ {
		body += fmt.Sprintf(
			`<item><title>Story %d about AI chips</title><link>https://example.com/%s/%d</link><pubDate>%s</pubDate><description>Chipmakers are racing to build inference hardware.</description></item>`,
			i, title, i, time.Now().Format(time.RFC1123Z))
	}
	return body + `</channel></rss>`
}

func TestFetchAllMergesAndDedups(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML("feed", 3)))
	}))
	defer srv.Close()

	sources := []FeedSource{
		{Name: "techcrunch", URL: srv.URL + "/a"},
		{Name: "theverge", URL: srv.URL + "/b"},
	}

	f := NewFetcher(5*time.Second, 0, retry.Config{}, nil)
	pool, err := f.FetchAll(context.Background(), sources)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	// Both feeds serve identical links, so the second feed's items are
	// dropped as duplicates.
	if pool.Total != 3 {
		t.Errorf("expected 3 deduplicated articles, got %d", pool.Total)
	}
}

func TestFetchAllRetriesFailingFeed(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(feedXML("flaky", 1)))
	}))
	defer srv.Close()

	cfg := retry.Config{MaxAttempts: 3, Delay: time.Millisecond}
	f := NewFetcher(5*time.Second, 0, cfg, nil)
	pool, err := f.FetchAll(context.Background(), []FeedSource{{Name: "techcrunch", URL: srv.URL}})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	if pool.Total != 1 {
		t.Errorf("expected 1 article after retries, got %d", pool.Total)
	}
}

func TestFetchAllAllFeedsFailed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 0, retry.Config{}, nil)
	_, err := f.FetchAll(context.Background(), []FeedSource{{Name: "techcrunch", URL: srv.URL}})
	if !errors.Is(err, ErrAllFeedsFailed) {
		t.Fatalf("expected ErrAllFeedsFailed, got %v", err)
	}
}
