package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"shorts-agent/agent"
	"shorts-agent/audio"
	"shorts-agent/config"
	"shorts-agent/editor"
	"shorts-agent/script"
	"shorts-agent/server"
	"shorts-agent/thumbnail"
	"shorts-agent/trends"
	"shorts-agent/upload"
	"shorts-agent/visuals"
)

func main() {
	// Load .env for local dev; deployments use real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Validate()

	if err := os.MkdirAll(cfg.Paths.Assets, 0755); err != nil {
		log.Fatalf("Failed to create assets dir %s: %v", cfg.Paths.Assets, err)
	}

	ctx := context.Background()
	uploader := upload.New(cfg)

	a := agent.New(cfg, agent.Adapters{
		Trends:    trends.New(ctx, cfg),
		Script:    script.New(cfg),
		Voice:     audio.New(cfg),
		Stock:     visuals.NewFetcher(cfg),
		Editor:    editor.New(cfg),
		Thumbnail: thumbnail.New(cfg),
		Publisher: uploader,
	})

	if hours := cfg.Schedule.UploadFrequencyHours; hours > 0 {
		log.Printf("⏰ Scheduler started. Running every %d hour(s).", hours)
		a.RunEvery(time.Duration(hours) * time.Hour)
	}

	srv := server.New(a, uploader)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🎬 shorts-agent listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, srv.Router()))
}
