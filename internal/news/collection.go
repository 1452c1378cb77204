package news

import (
	"sort"
	"time"
)

// Collection is an ordered set of articles with its count kept in sync.
// Filter methods return fresh collections; mutating a filtered collection
// never touches the one it was derived from.
type Collection struct {
	Articles  []*Article
	Total     int
	FetchedAt time.Time
}

// NewCollection returns an empty collection stamped with the current time.
func NewCollection() *Collection {
	return &Collection{FetchedAt: time.Now().UTC()}
}

// Add appends an article and updates Total.
func (c *Collection) Add(a *Article) {
	c.Articles = append(c.Articles, a)
	c.Total = len(c.Articles)
}

// FilterByCategory returns a new collection containing only the given category.
func (c *Collection) FilterByCategory(category Category) *Collection {
	out := &Collection{FetchedAt: c.FetchedAt}
	for _, a := range c.Articles {
		if a.Category == category {
			out.Add(a)
		}
	}
	return out
}

// FilterBySource returns a new collection containing only the given source.
func (c *Collection) FilterBySource(source Source) *Collection {
	out := &Collection{FetchedAt: c.FetchedAt}
	for _, a := range c.Articles {
		if a.Source == source {
			out.Add(a)
		}
	}
	return out
}

// SortByScore orders articles by score, highest first. The sort is stable
// so equal scores keep their original pool order.
func (c *Collection) SortByScore() {
	sort.SliceStable(c.Articles, func(i, j int) bool {
		return c.Articles[i].Score > c.Articles[j].Score
	})
}

// Top returns the n highest-scored articles. The collection must already
// be fully scored; Top sorts in place and slices the result.
func (c *Collection) Top(n int) []*Article {
	c.SortByScore()
	if n > len(c.Articles) {
		n = len(c.Articles)
	}
	if n < 0 {
		n = 0
	}
	return c.Articles[:n]
}
