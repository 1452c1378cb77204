package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"technews/internal/retry"
)

// Notifier posts pipeline run reports to a Telegram chat.
type Notifier struct {
	token  string
	chatID string
	client *http.Client
	retry  retry.Config
	logger *slog.Logger
	apiURL string
}

// New builds a notifier. An empty token disables it; Send becomes a
// no-op so callers don't need to guard on configuration. retryCfg
// fields at their zero value fall back to 3 attempts, 2s apart.
func New(token, chatID string, retryCfg retry.Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if retryCfg.MaxAttempts <= 0 {
		retryCfg = retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}
	}
	if retryCfg.Delay <= 0 {
		retryCfg.Delay = 2 * time.Second
	}
	return &Notifier{
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 30 * time.Second},
		retry:  retryCfg,
		logger: logger,
		apiURL: "https://api.telegram.org",
	}
}

// Enabled reports whether the notifier has credentials.
func (n *Notifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

// Send delivers one HTML-formatted message, retrying with backoff.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		return nil
	}

	err := retry.WithRetry(ctx, n.retry, func() error {
		return n.sendOnce(ctx, text)
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Info("telegram message sent", "chat_id", n.chatID)
	return nil
}

func (n *Notifier) sendOnce(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.token)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API status %d", resp.StatusCode)
	}
	return nil
}
