package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// categoryScienceTech is the YouTube category for Science & Technology.
const categoryScienceTech = "28"

var defaultTags = []string{"tech news", "english learning", "IT news", "technology", "daily news"}

const descriptionTemplate = `Daily tech news in English for learning!

Today's topics:
%s

🎯 Perfect for:
- IT professionals learning English
- Tech enthusiasts
- English learners interested in technology

📚 Subscribe for daily tech news!

#TechNews #English #Learning #IT #Technology`

// Config holds upload settings.
type Config struct {
	ClientSecretsFile string
	TokenFile         string
	CategoryID        string
	PrivacyStatus     string
	PlaylistID        string
	Tags              []string
}

// UploadResult describes one completed upload.
type UploadResult struct {
	VideoID  string
	VideoURL string
	Title    string
}

// Uploader publishes rendered digests to YouTube.
type Uploader struct {
	service *youtubeapi.Service
	cfg     Config
	logger  *slog.Logger
}

// NewUploader authenticates with a stored OAuth2 token. The token file
// must exist already; the interactive consent flow is a one-time manual
// step outside the pipeline.
func NewUploader(ctx context.Context, cfg Config, logger *slog.Logger) (*Uploader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CategoryID == "" {
		cfg.CategoryID = categoryScienceTech
	}
	if cfg.PrivacyStatus == "" {
		cfg.PrivacyStatus = "public"
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = defaultTags
	}

	secrets, err := os.ReadFile(cfg.ClientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, youtubeapi.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	token, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}

	service, err := youtubeapi.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Uploader{service: service, cfg: cfg, logger: logger}, nil
}

// Upload publishes one video file. topics become the bullet list in the
// description.
func (u *Uploader) Upload(ctx context.Context, videoPath string, topics []string) (*UploadResult, error) {
	f, err := os.Open(videoPath)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	title := BuildTitle(time.Now())
	upload := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       title,
			Description: BuildDescription(topics),
			Tags:        u.cfg.Tags,
			CategoryId:  u.cfg.CategoryID,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus:           u.cfg.PrivacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}

	u.logger.Info("uploading video", "title", title, "path", videoPath)
	call := u.service.Videos.Insert([]string{"snippet", "status"}, upload).Context(ctx)
	resp, err := call.Media(f).Do()
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	result := &UploadResult{
		VideoID:  resp.Id,
		VideoURL: "https://www.youtube.com/watch?v=" + resp.Id,
		Title:    title,
	}
	u.logger.Info("upload complete", "video_id", result.VideoID, "url", result.VideoURL)

	if u.cfg.PlaylistID != "" {
		if err := u.addToPlaylist(ctx, resp.Id); err != nil {
			// Upload succeeded; a playlist failure is not fatal.
			u.logger.Warn("add to playlist failed", "video_id", resp.Id, "error", err)
		}
	}
	return result, nil
}

func (u *Uploader) addToPlaylist(ctx context.Context, videoID string) error {
	item := &youtubeapi.PlaylistItem{
		Snippet: &youtubeapi.PlaylistItemSnippet{
			PlaylistId: u.cfg.PlaylistID,
			ResourceId: &youtubeapi.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}
	_, err := u.service.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	return err
}

// BuildTitle renders the date-stamped digest title.
func BuildTitle(now time.Time) string {
	return fmt.Sprintf("Tech News Digest - %s", now.Format("2006-01-02"))
}

// BuildDescription renders the channel description with a topic bullet
// list.
func BuildDescription(topics []string) string {
	if len(topics) == 0 {
		topics = []string{"Latest tech news"}
	}
	bullets := make([]string, len(topics))
	for i, topic := range topics {
		bullets[i] = "• " + topic
	}
	return fmt.Sprintf(descriptionTemplate, strings.Join(bullets, "\n"))
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return token, nil
}

// SaveToken persists an OAuth2 token for later runs. Used by the
// one-time auth bootstrap.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
