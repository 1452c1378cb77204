package youtube

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestBuildTitle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC)
	if got := BuildTitle(now); got != "Tech News Digest - 2026-08-26" {
		t.Errorf("BuildTitle = %q", got)
	}
}

func TestBuildDescription(t *testing.T) {
	t.Parallel()

	desc := BuildDescription([]string{"OpenAI model launch", "Chip shortage update"})
	if !strings.Contains(desc, "• OpenAI model launch") || !strings.Contains(desc, "• Chip shortage update") {
		t.Errorf("topics missing from description:\n%s", desc)
	}
	if !strings.Contains(desc, "#TechNews") {
		t.Error("hashtags missing from description")
	}

	fallback := BuildDescription(nil)
	if !strings.Contains(fallback, "• Latest tech news") {
		t.Errorf("fallback topic missing:\n%s", fallback)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	if err := SaveToken(path, token); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if loaded.RefreshToken != token.RefreshToken || loaded.AccessToken != token.AccessToken {
		t.Errorf("loaded token = %+v", loaded)
	}
}
