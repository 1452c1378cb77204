package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// FeaturedItem is a news article that already appeared in a produced video.
type FeaturedItem struct {
	Hash       string    `json:"hash"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Category   string    `json:"category"`
	Source     string    `json:"source"`
	FeaturedAt time.Time `json:"featured_at"`
}

// FileHistory keeps featured articles in a JSON file so consecutive runs
// never feature the same story twice within the TTL window.
type FileHistory struct {
	filePath string
	ttlHours int
	items    map[string]FeaturedItem
	mu       sync.RWMutex
}

// NewFileHistory creates a file-backed history store.
func NewFileHistory(filePath string, ttlHours int) *FileHistory {
	return &FileHistory{
		filePath: filePath,
		ttlHours: ttlHours,
		items:    make(map[string]FeaturedItem),
	}
}

// Load reads existing history from disk, dropping expired entries.
func (fh *FileHistory) Load() error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if _, err := os.Stat(fh.filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(fh.filePath)
	if err != nil {
		return fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []FeaturedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unmarshal history: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(fh.ttlHours) * time.Hour)
	for _, item := range items {
		if item.FeaturedAt.After(cutoff) {
			fh.items[item.Hash] = item
		}
	}

	return nil
}

// Save writes the current history to disk.
func (fh *FileHistory) Save() error {
	fh.mu.RLock()
	items := make([]FeaturedItem, 0, len(fh.items))
	for _, item := range fh.items {
		items = append(items, item)
	}
	fh.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := os.WriteFile(fh.filePath, data, 0644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}

	return nil
}

// GenerateHash derives a stable identity for an article from its
// normalized title and host, so URL tracking parameters do not defeat
// dedup.
func (fh *FileHistory) GenerateHash(title, url string) string {
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))
	normalizedTitle = strings.Join(strings.Fields(normalizedTitle), " ")

	domain := extractDomain(url)

	h := sha256.New()
	h.Write([]byte(normalizedTitle + "|" + domain))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// WasFeatured reports whether the article appeared in a video within TTL.
func (fh *FileHistory) WasFeatured(hash string) bool {
	fh.mu.RLock()
	defer fh.mu.RUnlock()

	item, exists := fh.items[hash]
	if !exists {
		return false
	}

	cutoff := time.Now().Add(-time.Duration(fh.ttlHours) * time.Hour)
	return item.FeaturedAt.After(cutoff)
}

// MarkFeatured records the article as featured now.
func (fh *FileHistory) MarkFeatured(hash, title, url, category, source string) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	fh.items[hash] = FeaturedItem{
		Hash:       hash,
		Title:      title,
		URL:        url,
		Category:   category,
		Source:     source,
		FeaturedAt: time.Now(),
	}
	return nil
}

// Cleanup evicts expired entries from memory.
func (fh *FileHistory) Cleanup() {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(fh.ttlHours) * time.Hour)
	for hash, item := range fh.items {
		if item.FeaturedAt.Before(cutoff) {
			delete(fh.items, hash)
		}
	}
}

// Len returns the number of tracked items.
func (fh *FileHistory) Len() int {
	fh.mu.RLock()
	defer fh.mu.RUnlock()
	return len(fh.items)
}

// extractDomain pulls a bare lowercase host out of a URL string.
func extractDomain(url string) string {
	if url == "" {
		return "unknown"
	}

	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	parts := strings.Split(url, "/")
	if len(parts) == 0 {
		return "unknown"
	}

	domain := strings.TrimPrefix(parts[0], "www.")
	return strings.ToLower(domain)
}
