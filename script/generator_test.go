package script

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shorts-agent/config"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := New(config.Default())
	g.endpoint = srv.URL
	return g
}

func TestGenerateReturnsModelText(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"candidates": [{"content": {"parts": [{"text": "A script about robots."}]}}]}`)
	})

	text, err := g.Generate(context.Background(), "The Future of AI", "short")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "A script about robots." {
		t.Errorf("text = %q, want the model output", text)
	}
}

func TestGenerateFallsBackOnAPIFailure(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	text, err := g.Generate(context.Background(), "The Future of AI", "short")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(text, "The Future of AI") {
		t.Errorf("fallback script %q does not mention the topic", text)
	}
	if !strings.Contains(text, "subscribe") {
		t.Errorf("fallback script %q missing the call to action", text)
	}
}

func TestGenerateFallsBackOnEmptyResponse(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	})

	text, err := g.Generate(context.Background(), "Coding", "short")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(text, "Coding") {
		t.Errorf("fallback script %q does not mention the topic", text)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	g := New(config.Default())

	if _, err := g.Generate(context.Background(), "Coding", "short"); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestBuildPrompt(t *testing.T) {
	short := buildPrompt("AI", "short")
	if !strings.Contains(short, "YouTube Short") {
		t.Error("short prompt missing the format brief")
	}
	long := buildPrompt("AI", "long")
	if !strings.Contains(long, "5 minutes") {
		t.Error("long prompt missing the target length")
	}
}
