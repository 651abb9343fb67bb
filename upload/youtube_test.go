package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shorts-agent/config"
)

func newTestUploader(t *testing.T) *Uploader {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Assets = t.TempDir()
	return New(cfg)
}

func TestIsAuthenticatedTracksTokenFile(t *testing.T) {
	u := newTestUploader(t)

	if u.IsAuthenticated() {
		t.Fatal("authenticated before any token exists")
	}
	if err := os.WriteFile(u.tokenFile, []byte(`{"refresh_token":"r"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if !u.IsAuthenticated() {
		t.Fatal("not authenticated with a persisted token")
	}
}

func TestAuthenticateRequiresCredentials(t *testing.T) {
	t.Setenv("YOUTUBE_CLIENT_ID", "")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "")

	u := newTestUploader(t)
	if err := u.Authenticate(context.Background()); err == nil {
		t.Fatal("expected error without OAuth credentials")
	}
	if _, err := os.Stat(filepath.Join(u.cfg.Paths.Assets, "token.json")); !os.IsNotExist(err) {
		t.Fatal("token file written despite failure")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate = %q, want unchanged", got)
	}
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	if got := truncate(string(long), 100); len(got) != 100 {
		t.Errorf("truncated length = %d, want 100", len(got))
	}
}
