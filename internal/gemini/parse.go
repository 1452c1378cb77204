package gemini

import (
	"fmt"
	"regexp"
	"strings"
)

// Patterns for response labels (case-insensitive, optional markdown
// bold around the label, optional colon spacing).
var labelPatterns = []struct {
	name  string
	regex *regexp.Regexp
}{
	{"english", regexp.MustCompile(`(?i)^\**(SCRIPT|ENGLISH)\**\s*[:：]\s*`)},
	{"korean", regexp.MustCompile(`(?i)^\**(KOREAN|한국어)\**\s*[:：]\s*`)},
	{"keywords", regexp.MustCompile(`(?i)^\**(KEYWORDS?|VOCABULARY)\**\s*[:：]\s*`)},
}

// parseScriptResponse extracts the labeled sections from a model
// response. Continuation lines belong to the last seen label, so
// multi-paragraph scripts survive intact.
func parseScriptResponse(response string) (*GeneratedScript, error) {
	sections := map[string]*strings.Builder{
		"english":  {},
		"korean":   {},
		"keywords": {},
	}

	current := ""
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		matched := false
		for _, lp := range labelPatterns {
			if lp.regex.MatchString(line) {
				current = lp.name
				appendSection(sections[current], lp.regex.ReplaceAllString(line, ""))
				matched = true
				break
			}
		}
		if matched || current == "" {
			continue
		}
		appendSection(sections[current], line)
	}

	english := strings.TrimSpace(sections["english"].String())
	if english == "" {
		return nil, fmt.Errorf("response contains no script section")
	}

	wordCount := len(strings.Fields(english))
	return &GeneratedScript{
		English:           english,
		Korean:            strings.TrimSpace(sections["korean"].String()),
		Keywords:          splitKeywords(sections["keywords"].String()),
		WordCount:         wordCount,
		EstimatedDuration: float64(wordCount) / wordsPerSecond,
	}, nil
}

func appendSection(b *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(text)
}

// sanitizeImagePrompt flattens a model response into one plain
// sentence: markdown decoration and wrapping quotes are stripped and
// over-long answers are cut on a rune boundary.
func sanitizeImagePrompt(response string) string {
	line := strings.TrimSpace(response)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	line = strings.Trim(line, "*_`\"'")
	line = strings.TrimSpace(line)

	const maxRunes = 400
	runes := []rune(line)
	if len(runes) > maxRunes {
		line = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return line
}

func splitKeywords(raw string) []string {
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "*-•"))
		if part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}
