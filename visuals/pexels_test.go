package visuals

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-agent/config"
)

func newTestFetcher(t *testing.T, handler http.Handler) (*Fetcher, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	assets := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Assets = assets
	cfg.Visuals.MaxDownloadMB = 1
	cfg.Visuals.DownloadWorkers = 2

	f := NewFetcher(cfg)
	f.searchURL = srv.URL + "/videos/search"
	f.apiKey = "test-key"
	return f, srv.URL
}

func searchBody(baseURL string, ids ...int) string {
	var videos []string
	for _, id := range ids {
		videos = append(videos, fmt.Sprintf(
			`{"id": %d, "video_files": [{"width": 720, "link": "%s/files/%d.mp4"}]}`,
			id, baseURL, id))
	}
	return `{"videos": [` + strings.Join(videos, ",") + `]}`
}

func TestFetchExcludesOversizedClips(t *testing.T) {
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/videos/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, searchBody(base, 1, 2))
	})
	mux.HandleFunc("/files/1.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("small clip"))
	})
	mux.HandleFunc("/files/2.mp4", func(w http.ResponseWriter, r *http.Request) {
		// Over the 1MB cap.
		w.Write(make([]byte, 2*1024*1024))
	})

	f, srvURL := newTestFetcher(t, mux)
	base = srvURL

	paths, err := f.Fetch(context.Background(), "The Future", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("paths = %v, want only the small clip", paths)
	}
	if filepath.Base(paths[0]) != "1.mp4" {
		t.Errorf("kept clip = %s, want 1.mp4", paths[0])
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Paths.Assets, "2.mp4")); !os.IsNotExist(err) {
		t.Error("oversized clip left on disk")
	}
}

func TestFetchSkipsExistingDownloads(t *testing.T) {
	var fileRequests int
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/videos/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody(base, 7))
	})
	mux.HandleFunc("/files/7.mp4", func(w http.ResponseWriter, r *http.Request) {
		fileRequests++
		w.Write([]byte("clip"))
	})

	f, srvURL := newTestFetcher(t, mux)
	base = srvURL

	existing := filepath.Join(f.cfg.Paths.Assets, "7.mp4")
	if err := os.WriteFile(existing, []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := f.Fetch(context.Background(), "Coding", 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(paths) != 1 || paths[0] != existing {
		t.Fatalf("paths = %v, want the cached clip", paths)
	}
	if fileRequests != 0 {
		t.Errorf("clip re-downloaded %d times, want 0", fileRequests)
	}
	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "cached" {
		t.Error("cached clip was overwritten")
	}
}

func TestFetchMissingAPIKey(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "")
	f := NewFetcher(config.Default())

	if _, err := f.Fetch(context.Background(), "Coding", 1); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestBestFile(t *testing.T) {
	files := []videoFile{
		{Width: 2560, Link: "huge"},
		{Width: 1080, Link: "large"},
		{Width: 720, Link: "small"},
		{Width: 0, Link: "broken"},
	}
	if got := bestFile(files, 1080); got != "small" {
		t.Errorf("bestFile = %q, want the smallest fitting rendition", got)
	}
	if got := bestFile(files[:1], 1080); got != "" {
		t.Errorf("bestFile = %q, want none when all exceed the limit", got)
	}
}
