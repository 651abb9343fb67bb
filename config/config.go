package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Trends   TrendsConfig   `yaml:"trends"`
	Script   ScriptConfig   `yaml:"script"`
	Audio    AudioConfig    `yaml:"audio"`
	Visuals  VisualsConfig  `yaml:"visuals"`
	Editor   EditorConfig   `yaml:"editor"`
	Upload   UploadConfig   `yaml:"upload"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TrendsConfig struct {
	NicheKeywords []string `yaml:"niche_keywords"`
	Subreddits    []string `yaml:"subreddits"`
	RegionCode    string   `yaml:"region_code"`
	MaxResults    int      `yaml:"max_results"`
}

type ScriptConfig struct {
	GeminiModel   string  `yaml:"gemini_model"`
	DurationClass string  `yaml:"duration_class"` // short | long
	Temperature   float64 `yaml:"temperature"`
}

type AudioConfig struct {
	Voice        string `yaml:"voice"`
	OutputFormat string `yaml:"output_format"`
}

type VisualsConfig struct {
	ClipCount       int `yaml:"clip_count"`
	MaxDownloadMB   int `yaml:"max_download_mb"`
	MaxClipWidth    int `yaml:"max_clip_width"`
	DownloadWorkers int `yaml:"download_workers"`
}

type EditorConfig struct {
	Width                int     `yaml:"width"`
	Height               int     `yaml:"height"`
	FPS                  int     `yaml:"fps"`
	SegmentMaxSec        float64 `yaml:"segment_max_sec"`
	FFmpegTimeoutSec     int     `yaml:"ffmpeg_timeout_sec"`
	CaptionsEnabled      bool    `yaml:"captions_enabled"`
	CaptionWordsPerChunk int     `yaml:"caption_words_per_chunk"`
}

type UploadConfig struct {
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	DefaultLanguage   string `yaml:"default_language"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
}

type ScheduleConfig struct {
	UploadFrequencyHours int `yaml:"upload_frequency_hours"`
}

type PathsConfig struct {
	Assets string `yaml:"assets"`
}

// Default returns the built-in configuration used when no config.yaml exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8000},
		Trends: TrendsConfig{
			NicheKeywords: []string{"Artificial Intelligence", "Space Exploration", "Coding", "Tech News"},
			Subreddits:    []string{"technology", "futurology"},
			RegionCode:    "US",
			MaxResults:    5,
		},
		Script: ScriptConfig{
			GeminiModel:   "gemini-1.5-flash",
			DurationClass: "short",
			Temperature:   0.8,
		},
		Audio: AudioConfig{
			Voice:        "en-US-ChristopherNeural",
			OutputFormat: "mp3",
		},
		Visuals: VisualsConfig{
			ClipCount:       3,
			MaxDownloadMB:   50,
			MaxClipWidth:    1080,
			DownloadWorkers: 3,
		},
		Editor: EditorConfig{
			Width:                1080,
			Height:               1920,
			FPS:                  30,
			SegmentMaxSec:        5,
			FFmpegTimeoutSec:     300,
			CaptionsEnabled:      false,
			CaptionWordsPerChunk: 5,
		},
		Upload: UploadConfig{
			Visibility:      "private",
			CategoryID:      "28", // Science & Technology
			DefaultLanguage: "en",
			MadeForKids:     false,
		},
		Schedule: ScheduleConfig{UploadFrequencyHours: 0},
		Paths:    PathsConfig{Assets: "assets"},
	}
}

// Load reads config.yaml over the defaults. A missing file is not an
// error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[config] %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate warns about missing credentials. Stages that need a missing
// key fail when they run; the service itself still starts.
func (c *Config) Validate() {
	var missing []string
	for _, key := range []string{"GEMINI_API_KEY", "PEXELS_API_KEY"} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		log.Printf("[config] Warning: missing environment variables: %s", strings.Join(missing, ", "))
	}
}
