package metrics

import (
	"sync"
	"time"
)

// Metrics aggregates per-process pipeline counters for the monitoring
// endpoints. All methods are safe for concurrent use.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesCrawled    int64
	ArticlesSelected   int64
	DuplicatesFiltered int64
	ScriptsGenerated   int64
	ScriptFailures     int64
	VideosProduced     int64
	UploadsCompleted   int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesCrawled(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesCrawled += int64(n)
}

func (m *Metrics) AddArticlesSelected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesSelected += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementScriptsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScriptsGenerated++
}

func (m *Metrics) IncrementScriptFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScriptFailures++
}

func (m *Metrics) IncrementVideosProduced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VideosProduced++
}

func (m *Metrics) IncrementUploadsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadsCompleted++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_crawled":        m.ArticlesCrawled,
		"articles_selected":       m.ArticlesSelected,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"scripts_generated":       m.ScriptsGenerated,
		"script_failures":         m.ScriptFailures,
		"videos_produced":         m.VideosProduced,
		"uploads_completed":       m.UploadsCompleted,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
