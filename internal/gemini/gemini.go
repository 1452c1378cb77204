package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"technews/internal/news"
)

// ScriptStyle selects the anchor voice for generated scripts.
type ScriptStyle string

const (
	StyleProfessional ScriptStyle = "professional"
	StyleCasual       ScriptStyle = "casual"
	StyleEducational  ScriptStyle = "educational"
)

// wordsPerSecond is the speaking rate used to size scripts and estimate
// their duration.
const wordsPerSecond = 2.5

// GeneratedScript is the anchor script produced for one article.
type GeneratedScript struct {
	Title             string
	English           string
	Korean            string
	Keywords          []string
	WordCount         int
	EstimatedDuration float64
}

// Client wraps the Gemini API for news script generation.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient connects to Gemini. model defaults to gemini-1.5-flash.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// GenerateScript turns one article into an anchor script with a Korean
// translation and key vocabulary.
func (c *Client) GenerateScript(ctx context.Context, article *news.Article, style ScriptStyle, targetSeconds int) (*GeneratedScript, error) {
	if targetSeconds <= 0 {
		targetSeconds = 60
	}

	model := c.client.GenerativeModel(c.model)
	prompt := buildPrompt(article, style, targetSeconds)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	response := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	script, err := parseScriptResponse(response)
	if err != nil {
		return nil, err
	}
	script.Title = article.Title
	return script, nil
}

// GenerateImagePrompt produces a one-sentence scene description used to
// generate the segment's background image.
func (c *Client) GenerateImagePrompt(ctx context.Context, article *news.Article) (string, error) {
	model := c.client.GenerativeModel(c.model)

	prompt := fmt.Sprintf(`Write one vivid sentence describing a photorealistic background image for a news video segment about this story:

Title: %s
Category: %s

Rules: describe the scene only. No text, no logos, no readable screens, no identifiable faces. Respond with the sentence and nothing else.`,
		article.Title, article.Category)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate image prompt: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	out := sanitizeImagePrompt(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if out == "" {
		return "", fmt.Errorf("response contains no usable prompt")
	}
	return out, nil
}

func buildPrompt(article *news.Article, style ScriptStyle, targetSeconds int) string {
	body := article.Content
	if body == "" {
		body = article.Summary
	}
	body = sanitizeContent(body, 6000)

	targetWords := int(float64(targetSeconds) * wordsPerSecond)

	return fmt.Sprintf(`You are a professional news anchor for a YouTube tech news channel called "Tech News Digest".
Your audience consists of IT professionals, developers, and tech enthusiasts who want to learn English while staying updated on tech trends.

Transform this tech news article into a %d-second news script (~%d words).

ARTICLE:
Title: %s
Category: %s
Source: %s
Content: %s

REQUIREMENTS:
- Style: %s
- Clear, educational English suitable for non-native speakers
- Explain technical terms in plain language
- Active voice, engaging delivery
- Opening hook and a short closing line

Respond strictly in this format:

SCRIPT: <the complete news script in English>

KOREAN: <Korean translation of the script>

KEYWORDS: <3-5 key terms from the story, comma separated>
`, targetSeconds, targetWords, article.Title, article.Category, article.Source.DisplayName(), body, styleGuideline(style))
}

func styleGuideline(style ScriptStyle) string {
	switch style {
	case StyleCasual:
		return "conversational and friendly, simple everyday language, relatable examples"
	case StyleEducational:
		return "teaching focused, break down complex concepts, emphasize key vocabulary"
	default:
		return "professional but approachable, precise language, context for technical terms"
	}
}

// sanitizeContent collapses whitespace and truncates over-long article
// bodies on a rune boundary, preferring to end at a sentence.
func sanitizeContent(content string, maxChars int) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")

	if utf8.RuneCountInString(content) <= maxChars {
		return content
	}

	runes := []rune(content)
	trimmed := string(runes[:maxChars])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}
