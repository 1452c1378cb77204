// Package ratelimit enforces daily budgets on paid AI API calls.
package ratelimit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Limiter tracks per-service usage against daily caps. A cap of 0 means
// unlimited. Counters reset 24 hours after the last reset.
type Limiter struct {
	mu          sync.Mutex
	scriptCount int
	imageCount  int
	totalCount  int
	maxScript   int
	maxImage    int
	maxTotal    int
	resetTime   time.Time
	cacheHits   int
	cacheMisses int
}

func New(maxScript, maxImage, maxTotal int) *Limiter {
	return &Limiter{
		maxScript: maxScript,
		maxImage:  maxImage,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// CanUseScript reports whether a script-generation request fits the budget.
func (rl *Limiter) CanUseScript() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxScript > 0 && rl.scriptCount >= rl.maxScript {
		slog.Warn("script generation rate limit reached", "used", rl.scriptCount, "limit", rl.maxScript)
		return false
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		slog.Warn("total AI rate limit reached", "used", rl.totalCount, "limit", rl.maxTotal)
		return false
	}
	return true
}

// UseScript consumes one script-generation slot.
func (rl *Limiter) UseScript() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxScript > 0 && rl.scriptCount >= rl.maxScript {
		return fmt.Errorf("script generation rate limit exceeded (%d/%d)", rl.scriptCount, rl.maxScript)
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded (%d/%d)", rl.totalCount, rl.maxTotal)
	}

	rl.scriptCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// UseImage consumes one image-generation slot.
func (rl *Limiter) UseImage() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxImage > 0 && rl.imageCount >= rl.maxImage {
		return fmt.Errorf("image generation rate limit exceeded (%d/%d)", rl.imageCount, rl.maxImage)
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded (%d/%d)", rl.totalCount, rl.maxTotal)
	}

	rl.imageCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// RecordCacheHit notes that a cached AI response was served instead of a
// fresh request.
func (rl *Limiter) RecordCacheHit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cacheHits++
}

// CacheHitRate returns the cache hit percentage for this budget window.
func (rl *Limiter) CacheHitRate() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.cacheHitRateLocked()
}

func (rl *Limiter) cacheHitRateLocked() float64 {
	total := rl.cacheHits + rl.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(rl.cacheHits) / float64(total) * 100
}

// Stats returns a snapshot of the limiter state.
func (rl *Limiter) Stats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"script_used":    rl.scriptCount,
		"script_limit":   rl.maxScript,
		"image_used":     rl.imageCount,
		"image_limit":    rl.maxImage,
		"total_used":     rl.totalCount,
		"total_limit":    rl.maxTotal,
		"cache_hits":     rl.cacheHits,
		"cache_misses":   rl.cacheMisses,
		"cache_hit_rate": rl.cacheHitRateLocked(),
		"reset_time":     rl.resetTime,
	}
}

func (rl *Limiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		slog.Info("resetting AI rate limiter counters",
			"script_used", rl.scriptCount, "total_used", rl.totalCount)
		rl.scriptCount = 0
		rl.imageCount = 0
		rl.totalCount = 0
		rl.cacheHits = 0
		rl.cacheMisses = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
