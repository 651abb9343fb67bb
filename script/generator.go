package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"shorts-agent/config"
)

const shortPromptTemplate = `Write a highly engaging, viral YouTube Short script about "%s".
The script must be exactly 130-150 words long (perfect for 60 seconds).

Structure:
1. Hook (0-3s): Grab attention immediately.
2. Body: Deliver value/facts quickly.
3. CTA: Ask to subscribe.

Output ONLY the spoken text. Do not include scene directions or timestamps.`

const longPromptTemplate = `Write a detailed, engaging YouTube video script about "%s".
Target length: 5 minutes.
Include an intro, 3 main points, and a conclusion.
Output ONLY the spoken text.`

// Generator writes narration scripts via the Gemini REST API.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
	endpoint   string
}

func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint: fmt.Sprintf(
			"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
			cfg.Script.GeminiModel,
		),
	}
}

type geminiRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces the spoken text for a video about topic. A missing
// API key fails before any call is made; an API failure degrades to a
// canned fallback script so the cycle can proceed.
func (g *Generator) Generate(ctx context.Context, topic, durationClass string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", errors.New("GEMINI_API_KEY not set")
	}

	log.Printf("[script] Generating %s script for topic: %s", durationClass, topic)

	text, err := g.request(ctx, apiKey, buildPrompt(topic, durationClass))
	if err != nil {
		log.Printf("[script] Warning: generation failed: %v, using fallback script", err)
		return fallbackScript(topic), nil
	}
	return text, nil
}

func (g *Generator) request(ctx context.Context, apiKey, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{Temperature: g.cfg.Script.Temperature},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?key="+apiKey, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini: unexpected status %s: %s", resp.Status, bytes.TrimSpace(raw))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(topic, durationClass string) string {
	if durationClass == "long" {
		return fmt.Sprintf(longPromptTemplate, topic)
	}
	return fmt.Sprintf(shortPromptTemplate, topic)
}

func fallbackScript(topic string) string {
	return fmt.Sprintf("Welcome to our channel. Today we talk about %s. Please subscribe.", topic)
}
