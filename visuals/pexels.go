package visuals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"shorts-agent/config"
)

// Fetcher downloads portrait stock clips from the Pexels video API into
// the assets directory. Downloads are idempotent: a clip that already
// exists locally is returned without re-fetching. Files above the
// configured size cap are discarded, not returned.
type Fetcher struct {
	cfg        *config.Config
	httpClient *http.Client
	searchURL  string
	apiKey     string // resolved from PEXELS_API_KEY when empty
}

func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		searchURL:  "https://api.pexels.com/videos/search",
	}
}

type searchResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID         int64       `json:"id"`
	VideoFiles []videoFile `json:"video_files"`
}

type videoFile struct {
	Width int    `json:"width"`
	Link  string `json:"link"`
}

// Fetch searches Pexels for portrait clips matching query and returns
// the local paths of every clip that downloaded within the size cap.
func (f *Fetcher) Fetch(ctx context.Context, query string, count int) ([]string, error) {
	apiKey := f.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("PEXELS_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("PEXELS_API_KEY not set")
	}

	log.Printf("[visuals] Searching Pexels for: %s", query)

	result, err := f.search(ctx, apiKey, query, count)
	if err != nil {
		return nil, err
	}

	type pick struct {
		url  string
		path string
	}
	var picks []pick
	for _, video := range result.Videos {
		link := bestFile(video.VideoFiles, f.cfg.Visuals.MaxClipWidth)
		if link == "" {
			continue
		}
		picks = append(picks, pick{
			url:  link,
			path: filepath.Join(f.cfg.Paths.Assets, fmt.Sprintf("%d.mp4", video.ID)),
		})
	}

	workers := f.cfg.Visuals.DownloadWorkers
	if workers <= 0 {
		workers = 1
	}

	// One bad download excludes that clip only; order is preserved.
	results := make([]string, len(picks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range picks {
		i, p := i, p
		g.Go(func() error {
			path, err := f.download(gctx, p.url, p.path)
			if err != nil {
				log.Printf("[visuals] Warning: %v, clip excluded", err)
				return nil
			}
			results[i] = path
			return nil
		})
	}
	_ = g.Wait()

	var paths []string
	for _, p := range results {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (f *Fetcher) search(ctx context.Context, apiKey, query string, count int) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.searchURL, nil)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(count))
	q.Set("orientation", "portrait")
	q.Set("size", "small")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels search: unexpected status %s", resp.Status)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("pexels search: decode response: %w", err)
	}
	return &result, nil
}

// bestFile picks the smallest rendition that fits the width limit,
// keeping memory and bandwidth down.
func bestFile(files []videoFile, maxWidth int) string {
	best, bestWidth := "", 0
	for _, f := range files {
		if f.Width <= 0 || f.Width > maxWidth {
			continue
		}
		if best == "" || f.Width < bestWidth {
			best, bestWidth = f.Link, f.Width
		}
	}
	return best
}

// download fetches rawURL to path unless it already exists. The size
// cap is enforced both from Content-Length and while streaming, since
// not every server reports a length.
func (f *Fetcher) download(ctx context.Context, rawURL, path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		log.Printf("[visuals] Clip already downloaded: %s", path)
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	limit := int64(f.cfg.Visuals.MaxDownloadMB) * 1024 * 1024
	if resp.ContentLength > limit {
		return "", fmt.Errorf("clip too large (%.1fMB > %dMB)", float64(resp.ContentLength)/1024/1024, f.cfg.Visuals.MaxDownloadMB)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	written, err := io.Copy(file, io.LimitReader(resp.Body, limit+1))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	if written > limit {
		os.Remove(path)
		return "", fmt.Errorf("clip too large (>%dMB)", f.cfg.Visuals.MaxDownloadMB)
	}

	log.Printf("[visuals] Downloaded %s (%.1fMB)", path, float64(written)/1024/1024)
	return path, nil
}
