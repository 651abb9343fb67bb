package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shorts-agent/config"
	"shorts-agent/types"
)

// Uploader publishes finished videos to YouTube via the Data API v3.
// OAuth client credentials come from the environment; the exchanged
// token is persisted next to the other assets so authentication
// survives restarts.
type Uploader struct {
	cfg       *config.Config
	tokenFile string
}

func New(cfg *config.Config) *Uploader {
	return &Uploader{
		cfg:       cfg,
		tokenFile: filepath.Join(cfg.Paths.Assets, "token.json"),
	}
}

// IsAuthenticated reports whether a persisted credential exists.
func (u *Uploader) IsAuthenticated() bool {
	_, err := os.Stat(u.tokenFile)
	return err == nil
}

// Authenticate exchanges the refresh token from the environment for a
// fresh access token and persists it. Backs the POST /auth flow.
func (u *Uploader) Authenticate(ctx context.Context) error {
	conf, seed, err := u.oauthConfig()
	if err != nil {
		return err
	}

	token, err := conf.TokenSource(ctx, seed).Token()
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(u.tokenFile, data, 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	log.Printf("[upload] ✅ Authenticated, token saved to %s", u.tokenFile)
	return nil
}

// Upload pushes the video with its metadata and returns the remote id.
func (u *Uploader) Upload(ctx context.Context, videoPath string, meta types.VideoMetadata) (string, error) {
	ts, err := u.tokenSource(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube auth: %w", err)
	}
	svc, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	log.Printf("[upload] Uploading: %q", meta.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                truncate(meta.Title, 100),
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           meta.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.cfg.Upload.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Printf("[upload] File size: %.1f MB", float64(fi.Size())/1024/1024)
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.NotifySubscribers(u.cfg.Upload.NotifySubscribers)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}

	log.Printf("[upload] ✅ Upload complete! Video ID: %s", uploaded.Id)
	log.Printf("[upload] https://www.youtube.com/watch?v=%s", uploaded.Id)
	return uploaded.Id, nil
}

// oauthConfig builds the OAuth config and seed token from environment
// credentials.
func (u *Uploader) oauthConfig() (*oauth2.Config, *oauth2.Token, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, nil, errors.New("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}
	seed := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return conf, seed, nil
}

// tokenSource prefers the persisted token, falling back to the
// environment seed.
func (u *Uploader) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	conf, seed, err := u.oauthConfig()
	if err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(u.tokenFile); err == nil {
		var saved oauth2.Token
		if err := json.Unmarshal(data, &saved); err == nil && saved.RefreshToken != "" {
			seed = &saved
		}
	}
	return conf.TokenSource(ctx, seed), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
