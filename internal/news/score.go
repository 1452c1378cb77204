package news

import "time"

// Scorer computes selection scores. The clock is injectable so scoring is
// deterministic in tests and repeatable within one pipeline run.
type Scorer struct {
	Now func() time.Time
}

// NewScorer returns a scorer bound to the wall clock.
func NewScorer() Scorer {
	return Scorer{Now: time.Now}
}

// Score computes the selection score for one article, writes it to
// a.Score and returns it.
//
// The formula is multiplicative, applied in fixed order:
//
//	base = importance base score
//	base *= category weight
//	base *= recency multiplier   (<6h ×1.5, 6–24h ×1.2, >72h ×0.5)
//	base *= length multiplier    (300–800 words ×1.2, <100 ×0.7)
//
// Articles dated in the future get a negative age and land in the
// freshest recency bucket. Scores are stable only for a fixed "now":
// re-score before re-sorting if time has materially advanced.
func (s Scorer) Score(a *Article) float64 {
	score := a.Importance.BaseScore()
	score *= a.Category.Weight()

	age := s.Now().Sub(a.PublishedAt)
	switch {
	case age < 6*time.Hour:
		score *= 1.5
	case age < 24*time.Hour:
		score *= 1.2
	case age > 72*time.Hour:
		score *= 0.5
	}

	switch {
	case a.WordCount >= 300 && a.WordCount <= 800:
		score *= 1.2
	case a.WordCount < 100:
		score *= 0.7
	}

	a.Score = score
	return score
}

// ScoreAll scores every article in the collection with a single "now" so
// ordering inside one run is consistent.
func (s Scorer) ScoreAll(c *Collection) {
	now := s.Now()
	fixed := Scorer{Now: func() time.Time { return now }}
	for _, a := range c.Articles {
		fixed.Score(a)
	}
}
