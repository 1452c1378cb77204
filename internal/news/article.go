// Package news holds the article model, category/importance taxonomy and
// the selection scoring formula used across the digest pipeline.
package news

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Category classifies an article by topic.
type Category string

const (
	// IT/Tech categories (primary)
	CategoryAIML           Category = "ai_ml"
	CategorySoftwareCloud  Category = "software_cloud"
	CategoryStartupFunding Category = "startup_funding"
	CategorySecurity       Category = "security"
	CategoryHardware       Category = "hardware"
	CategoryMobile         Category = "mobile"
	CategoryTechGeneral    Category = "tech_general"

	// Business categories (secondary)
	CategoryBusiness  Category = "business"
	CategoryEconomics Category = "economics"
	CategoryFinance   Category = "finance"

	// Other
	CategoryBreaking Category = "breaking"
	CategoryScience  Category = "science"
	CategoryHealth   Category = "health"
	CategoryWorld    Category = "world"
	CategoryUnknown  Category = "unknown"
)

// categoryTraits carries the fixed per-category selection attributes.
// A lookup table keeps the taxonomy in one place instead of spreading
// switch statements through the selector.
type categoryTraits struct {
	weight   float64
	itTech   bool
	business bool
}

var categoryTable = map[Category]categoryTraits{
	CategoryAIML:           {weight: 1.5, itTech: true},
	CategorySoftwareCloud:  {weight: 1.3, itTech: true},
	CategoryStartupFunding: {weight: 1.2, itTech: true},
	CategorySecurity:       {weight: 1.2, itTech: true},
	CategoryHardware:       {weight: 1.1, itTech: true},
	CategoryMobile:         {weight: 1.1, itTech: true},
	CategoryTechGeneral:    {weight: 1.0, itTech: true},
	CategoryBusiness:       {weight: 1.0, business: true},
	CategoryEconomics:      {weight: 0.9, business: true},
	CategoryFinance:        {weight: 0.9, business: true},
	CategoryBreaking:       {weight: 2.0},
	CategoryScience:        {weight: 0.8},
	CategoryHealth:         {weight: 0.7},
	CategoryWorld:          {weight: 0.6},
	CategoryUnknown:        {weight: 0.5},
}

// Weight returns the fixed selection weight for the category.
// Unlisted values fall back to 1.0 so a missing table entry does not
// zero out an article.
func (c Category) Weight() float64 {
	if t, ok := categoryTable[c]; ok {
		return t.weight
	}
	return 1.0
}

// IsITTech reports whether the category belongs to the IT/Tech group.
func (c Category) IsITTech() bool {
	return categoryTable[c].itTech
}

// IsBusiness reports whether the category belongs to the Business group.
func (c Category) IsBusiness() bool {
	return categoryTable[c].business
}

// Importance grades how big a story is.
type Importance string

const (
	ImportanceBreaking Importance = "breaking"
	ImportanceMajor    Importance = "major"
	ImportanceNormal   Importance = "normal"
	ImportanceMinor    Importance = "minor"
)

var importanceScores = map[Importance]float64{
	ImportanceBreaking: 10.0,
	ImportanceMajor:    5.0,
	ImportanceNormal:   1.0,
	ImportanceMinor:    0.5,
}

// BaseScore returns the importance base score used by the scoring formula.
func (i Importance) BaseScore() float64 {
	if s, ok := importanceScores[i]; ok {
		return s
	}
	return 1.0
}

// Source identifies the origin publication.
type Source string

const (
	// IT/Tech sources (Korean)
	SourceETNews  Source = "etnews"
	SourceZDNetKR Source = "zdnet_kr"

	// IT/Tech sources (English)
	SourceTechCrunch  Source = "techcrunch"
	SourceTheVerge    Source = "theverge"
	SourceArsTechnica Source = "arstechnica"
	SourceWired       Source = "wired"
	SourceMITTR       Source = "mittr"

	// Business sources
	SourceReuters   Source = "reuters"
	SourceBloomberg Source = "bloomberg"

	// General sources
	SourceBBC      Source = "bbc"
	SourceCNN      Source = "cnn"
	SourceNYT      Source = "nyt"
	SourceGuardian Source = "guardian"
)

type sourceTraits struct {
	displayName string
	rssURL      string
	itTech      bool
	business    bool
}

var sourceTable = map[Source]sourceTraits{
	SourceETNews:      {displayName: "전자신문", rssURL: "https://www.etnews.com/rss/S1N1.xml", itTech: true},
	SourceZDNetKR:     {displayName: "ZDNet Korea", rssURL: "https://www.zdnet.co.kr/rss/allNews.xml", itTech: true},
	SourceTechCrunch:  {displayName: "TechCrunch", rssURL: "https://techcrunch.com/feed/", itTech: true},
	SourceTheVerge:    {displayName: "The Verge", rssURL: "https://www.theverge.com/rss/index.xml", itTech: true},
	SourceArsTechnica: {displayName: "Ars Technica", rssURL: "https://feeds.arstechnica.com/arstechnica/index", itTech: true},
	SourceWired:       {displayName: "Wired", rssURL: "https://www.wired.com/feed/rss", itTech: true},
	SourceMITTR:       {displayName: "MIT Technology Review", rssURL: "https://www.technologyreview.com/feed/", itTech: true},
	SourceReuters:     {displayName: "Reuters", rssURL: "https://www.reutersagency.com/feed/?taxonomy=best-topics&post_type=best", business: true},
	SourceBloomberg:   {displayName: "Bloomberg", business: true},
	SourceBBC:         {displayName: "BBC News", rssURL: "http://feeds.bbci.co.uk/news/rss.xml"},
	SourceCNN:         {displayName: "CNN", rssURL: "http://rss.cnn.com/rss/cnn_topstories.rss"},
	SourceNYT:         {displayName: "The New York Times"},
	SourceGuardian:    {displayName: "The Guardian", rssURL: "https://www.theguardian.com/world/rss"},
}

// DisplayName returns the human-readable source name.
func (s Source) DisplayName() string {
	if t, ok := sourceTable[s]; ok && t.displayName != "" {
		return t.displayName
	}
	return strings.ToUpper(string(s))
}

// RSSURL returns the default RSS feed URL for the source ("" if none known).
func (s Source) RSSURL() string {
	return sourceTable[s].rssURL
}

// IsITTechSource reports whether the source is technology focused.
func (s Source) IsITTechSource() bool {
	return sourceTable[s].itTech
}

// IsBusinessSource reports whether the source is business or finance focused.
func (s Source) IsBusinessSource() bool {
	return sourceTable[s].business
}

const maxTitleRunes = 500

// Article is one crawled news item. Fields other than Score are fixed at
// construction; Score is written once by the Scorer before selection runs.
type Article struct {
	Title  string
	URL    string
	Source Source

	Summary string
	Content string

	Category    Category
	Importance  Importance
	PublishedAt time.Time
	Author      string
	ImageURL    string

	WordCount   int
	ReadingTime int // minutes

	CrawledAt time.Time
	Score     float64
}

// NewArticle builds an article and enforces the construction contract:
// a trimmed non-empty title of at most 500 runes and a non-empty URL.
// Category and importance default to unknown/normal when unset.
func NewArticle(title, url string, source Source, publishedAt time.Time) (*Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("article: empty title (url=%s)", url)
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return nil, fmt.Errorf("article: title longer than %d runes", maxTitleRunes)
	}
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("article: empty url (title=%s)", title)
	}

	return &Article{
		Title:       title,
		URL:         strings.TrimSpace(url),
		Source:      source,
		Category:    CategoryUnknown,
		Importance:  ImportanceNormal,
		PublishedAt: publishedAt,
		CrawledAt:   time.Now().UTC(),
	}, nil
}

// IsRecent reports whether the article is younger than 24 hours.
func (a *Article) IsRecent() bool {
	return time.Since(a.PublishedAt) < 24*time.Hour
}

// IsBreaking reports whether the article carries breaking importance.
func (a *Article) IsBreaking() bool {
	return a.Importance == ImportanceBreaking
}

// EstimateReadingTime converts a word count to whole minutes at ~200 wpm.
func EstimateReadingTime(wordCount int) int {
	if wordCount < 200 {
		return 1
	}
	return wordCount / 200
}
