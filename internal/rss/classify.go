package rss

import (
	"regexp"
	"strings"

	"technews/internal/news"
)

// Keyword tables for category detection. English and Korean terms live
// in the same tables so one classifier covers every feed.
var aiKeywords = []string{
	"artificial intelligence", "machine learning", "deep learning",
	"neural network", "chatgpt", "openai", "anthropic", "claude",
	"gpt", "llm", "ai model", "generative ai",
	"인공지능", "머신러닝", "딥러닝", "생성형",
}

var startupKeywords = []string{
	"raises $", "raises funds", "series a", "series b", "series c",
	"seed round", "venture capital", "vc funding", "startup",
	"valuation", "unicorn",
	"투자", "스타트업", "유니콘", "벤처", "펀딩",
}

var securityKeywords = []string{
	"security", "hack", "breach", "cybersecurity", "privacy",
	"encryption", "vulnerability", "malware", "ransomware",
	"보안", "해킹", "사이버", "정보보호", "암호화", "취약점", "랜섬웨어",
}

var cloudKeywords = []string{
	"cloud", "aws", "azure", "google cloud", "saas", "platform",
	"api", "software", "enterprise",
	"클라우드", "애저", "소프트웨어", "플랫폼",
}

var mobileKeywords = []string{
	"iphone", "android", "ios", "mobile app", "smartphone", "tablet",
	"아이폰", "갤럭시", "안드로이드", "모바일", "스마트폰", "태블릿",
}

var hardwareKeywords = []string{
	"chip", "processor", "hardware", "device", "gadget", "semiconductor",
	"반도체", "프로세서", "삼성전자", "sk하이닉스", "디스플레이", "배터리",
}

var breakingKeywords = []string{
	"breaking", "exclusive", "just in", "just announced", "alert",
	"속보", "긴급", "단독", "특종",
}

var majorKeywords = []string{
	"google", "apple", "microsoft", "amazon", "meta", "openai",
	"raises $100", "raises $500", "billion", "acquisition", "acquires",
	"삼성", "네이버", "카카오", "구글", "애플", "마이크로소프트",
}

var minorKeywords = []string{
	"review", "opinion", "how to", "guide", "deal", "sale",
	"리뷰", "기고", "칼럼",
}

// RSS tags that pin a category before keyword scanning runs.
var tagCategories = map[string]news.Category{
	"ai":                      news.CategoryAIML,
	"artificial-intelligence": news.CategoryAIML,
	"machine-learning":        news.CategoryAIML,
	"ml":                      news.CategoryAIML,
	"startups":                news.CategoryStartupFunding,
	"venture-capital":         news.CategoryStartupFunding,
	"funding":                 news.CategoryStartupFunding,
	"vc":                      news.CategoryStartupFunding,
	"security":                news.CategorySecurity,
	"privacy":                 news.CategorySecurity,
	"cybersecurity":           news.CategorySecurity,
	"cloud":                   news.CategorySoftwareCloud,
	"saas":                    news.CategorySoftwareCloud,
	"software":                news.CategorySoftwareCloud,
	"enterprise":              news.CategorySoftwareCloud,
}

// ClassifyCategory decides an article category from its RSS tags and
// the title/summary text. Tags win over keyword scanning. IT sources
// fall back to tech_general, everything else to world.
func ClassifyCategory(source news.Source, tags []string, title, summary string) news.Category {
	for _, tag := range tags {
		if cat, ok := tagCategories[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return cat
		}
	}

	text := strings.ToLower(title + " " + summary)
	switch {
	case containsAny(text, aiKeywords):
		return news.CategoryAIML
	case containsAny(text, startupKeywords):
		return news.CategoryStartupFunding
	case containsAny(text, securityKeywords):
		return news.CategorySecurity
	case containsAny(text, cloudKeywords):
		return news.CategorySoftwareCloud
	case containsAny(text, mobileKeywords):
		return news.CategoryMobile
	case containsAny(text, hardwareKeywords):
		return news.CategoryHardware
	}

	if source.IsITTechSource() {
		return news.CategoryTechGeneral
	}
	if source.IsBusinessSource() {
		return news.CategoryBusiness
	}
	return news.CategoryWorld
}

// ClassifyImportance ranks an article by its headline alone. Body text
// is too noisy for this: "breaking" in a paragraph rarely means the
// story is breaking news.
func ClassifyImportance(title string) news.Importance {
	titleLower := strings.ToLower(title)
	switch {
	case containsAny(titleLower, breakingKeywords):
		return news.ImportanceBreaking
	case containsAny(titleLower, majorKeywords):
		return news.ImportanceMajor
	case containsAny(titleLower, minorKeywords):
		return news.ImportanceMinor
	}
	return news.ImportanceNormal
}

// containsAny distinguishes phrases and short words (avoids "ai"
// matching inside "said").
func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		// Phrases match as plain substrings.
		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}

		// Short ASCII tokens need word boundaries.
		if len(k) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				return true
			}
			continue
		}

		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
