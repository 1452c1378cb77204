// Package selector picks a bounded, diverse, quality-ranked subset of a
// scored article pool for one digest run.
package selector

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"technews/internal/news"
)

// ErrInvalidArgument marks caller contract violations (bad count or ratio).
var ErrInvalidArgument = errors.New("invalid argument")

const (
	// DefaultITTechRatio is the target fraction of IT/Tech articles.
	DefaultITTechRatio = 0.75
	// DefaultMaxCategoryDuplicate caps articles per category in a selection.
	DefaultMaxCategoryDuplicate = 2
)

// Selector selects top articles while keeping the configured IT/Tech vs
// Business mix and limiting category duplication. It is stateless between
// calls and safe to use from multiple goroutines on independent pools.
//
// The selector never re-scores: callers must run the Scorer over the pool
// first. Unscored articles all carry score 0 and would be selected in
// arbitrary pool order.
type Selector struct {
	ITTechRatio          float64
	MaxCategoryDuplicate int

	logger *slog.Logger
}

// New returns a selector with the given tunables; non-positive
// maxCategoryDuplicate falls back to the default.
func New(itTechRatio float64, maxCategoryDuplicate int, logger *slog.Logger) *Selector {
	if maxCategoryDuplicate <= 0 {
		maxCategoryDuplicate = DefaultMaxCategoryDuplicate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		ITTechRatio:          itTechRatio,
		MaxCategoryDuplicate: maxCategoryDuplicate,
		logger:               logger,
	}
}

// Select returns up to count articles from the scored pool.
//
// Steps: partition the pool into IT/Tech, Business and Other; compute the
// per-group targets from ITTechRatio; shift shortfall between groups when
// supply is thin; run diversity-capped sub-selection per group; fill any
// remainder from Other; then sort the merged result by score and truncate.
//
// An empty pool returns an empty slice with no error. Insufficient supply
// is not an error either — the result is simply shorter than count.
func (s *Selector) Select(pool *news.Collection, count int) ([]*news.Article, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidArgument, count)
	}
	if s.ITTechRatio < 0 || s.ITTechRatio > 1 {
		return nil, fmt.Errorf("%w: it/tech ratio must be in [0,1], got %v", ErrInvalidArgument, s.ITTechRatio)
	}
	if pool == nil || pool.Total == 0 {
		s.logger.Warn("selection skipped: empty article pool")
		return []*news.Article{}, nil
	}

	var itTech, business, other []*news.Article
	for _, a := range pool.Articles {
		switch {
		case a.Category.IsITTech():
			itTech = append(itTech, a)
		case a.Category.IsBusiness():
			business = append(business, a)
		default:
			other = append(other, a)
		}
	}

	s.logger.Debug("article breakdown",
		"it_tech", len(itTech), "business", len(business), "other", len(other))

	itTarget := int(float64(count) * s.ITTechRatio)
	businessTarget := count - itTarget

	// Shift shortfall between the two primary groups. Business absorbs a
	// thin IT/Tech pool first; the reverse shift then re-clamps to the
	// IT/Tech supply so the combined target never exceeds count.
	if len(itTech) < itTarget {
		itTarget = len(itTech)
		businessTarget = count - itTarget
	}
	if len(business) < businessTarget {
		businessTarget = len(business)
		itTarget = min(count-businessTarget, len(itTech))
	}

	s.logger.Debug("selection targets", "it_tech", itTarget, "business", businessTarget)

	selected := s.selectDiverse(itTech, itTarget)
	selected = append(selected, s.selectDiverse(business, businessTarget)...)

	if remaining := count - len(selected); remaining > 0 && len(other) > 0 {
		selected = append(selected, s.selectDiverse(other, remaining)...)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})
	if len(selected) > count {
		selected = selected[:count]
	}

	s.logSelection(selected)
	return selected, nil
}

// selectDiverse greedily takes the highest-scored articles while holding
// every category to at most MaxCategoryDuplicate picks. If the cap leaves
// the quota unfilled, the constraint is relaxed and the skipped articles
// are appended in score order until the quota is met or the group runs out.
func (s *Selector) selectDiverse(group []*news.Article, count int) []*news.Article {
	if len(group) == 0 || count <= 0 {
		return nil
	}

	sorted := make([]*news.Article, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	selected := make([]*news.Article, 0, count)
	chosen := make(map[*news.Article]bool, count)
	categoryCounts := make(map[news.Category]int)

	for _, a := range sorted {
		if len(selected) >= count {
			break
		}
		if categoryCounts[a.Category] < s.MaxCategoryDuplicate {
			selected = append(selected, a)
			chosen[a] = true
			categoryCounts[a.Category]++
		}
	}

	// Pool lacks variety: relax diversity rather than under-fill.
	if len(selected) < count {
		for _, a := range sorted {
			if len(selected) >= count {
				break
			}
			if !chosen[a] {
				selected = append(selected, a)
				chosen[a] = true
			}
		}
	}

	return selected
}

func (s *Selector) logSelection(selected []*news.Article) {
	counts := make(map[news.Category]int)
	var total float64
	for _, a := range selected {
		counts[a.Category]++
		total += a.Score
	}

	avg := 0.0
	if len(selected) > 0 {
		avg = total / float64(len(selected))
	}
	s.logger.Info("articles selected",
		"count", len(selected), "categories", len(counts), "avg_score", avg)

	for i, a := range selected {
		s.logger.Debug("selected article",
			"rank", i+1, "score", a.Score, "category", a.Category,
			"importance", a.Importance, "title", a.Title)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
