package trends

import (
	"context"
	"testing"

	"shorts-agent/config"
)

func TestPickKeywordScoresAgainstTitles(t *testing.T) {
	keywords := []string{"Artificial Intelligence", "Space Exploration", "Coding"}
	titles := []string{
		"NASA announces new space telescope",
		"SpaceX launch: space exploration milestone",
		"Top 10 coding tips",
	}

	if got := pickKeyword(keywords, titles); got != "Space Exploration" {
		t.Errorf("pickKeyword = %q, want %q", got, "Space Exploration")
	}
}

func TestPickKeywordFallsBackWithoutTitles(t *testing.T) {
	keywords := []string{"Coding"}
	if got := pickKeyword(keywords, nil); got != "Coding" {
		t.Errorf("pickKeyword = %q, want the only keyword", got)
	}
}

func TestSelectTopicRequiresKeywords(t *testing.T) {
	cfg := config.Default()
	cfg.Trends.NicheKeywords = nil
	a := &Analyzer{cfg: cfg}

	if _, err := a.SelectTopic(context.Background()); err == nil {
		t.Fatal("expected error with no keywords configured")
	}
}

func TestSelectTopicWithoutTrendClients(t *testing.T) {
	cfg := config.Default()
	cfg.Trends.NicheKeywords = []string{"Coding"}
	a := &Analyzer{cfg: cfg} // no youtube or reddit client

	topic, err := a.SelectTopic(context.Background())
	if err != nil {
		t.Fatalf("select topic: %v", err)
	}
	if topic != "The Future of Coding" {
		t.Errorf("topic = %q, want %q", topic, "The Future of Coding")
	}
}
