package trends

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shorts-agent/config"
)

// Analyzer picks a video topic from current trends. It pulls trending
// video titles from YouTube and hot post titles from Reddit, scores the
// configured niche keywords against them, and falls back to a random
// keyword when no trend data is reachable.
type Analyzer struct {
	cfg     *config.Config
	youtube *youtube.Service
	reddit  *reddit.Client
}

func New(ctx context.Context, cfg *config.Config) *Analyzer {
	a := &Analyzer{cfg: cfg}

	if key := os.Getenv("YOUTUBE_API_KEY"); key != "" {
		svc, err := youtube.NewService(ctx, option.WithAPIKey(key))
		if err != nil {
			log.Printf("[trends] Warning: youtube service init failed: %v", err)
		} else {
			a.youtube = svc
		}
	} else {
		log.Printf("[trends] YOUTUBE_API_KEY not set, YouTube trend data will be limited")
	}

	client, err := reddit.NewReadonlyClient()
	if err != nil {
		log.Printf("[trends] Warning: reddit client init failed: %v", err)
	} else {
		a.reddit = client
	}
	return a
}

// SelectTopic decides on a topic for the next video.
func (a *Analyzer) SelectTopic(ctx context.Context) (string, error) {
	keywords := a.cfg.Trends.NicheKeywords
	if len(keywords) == 0 {
		return "", errors.New("no niche keywords configured")
	}

	var titles []string
	titles = append(titles, a.youtubeTrending(ctx)...)
	titles = append(titles, a.redditHot(ctx)...)
	log.Printf("[trends] Collected %d trending title(s)", len(titles))

	topic := fmt.Sprintf("The Future of %s", pickKeyword(keywords, titles))
	log.Printf("[trends] Selected Topic: %s", topic)
	return topic, nil
}

// youtubeTrending fetches the region's most popular video titles.
func (a *Analyzer) youtubeTrending(ctx context.Context) []string {
	if a.youtube == nil {
		return nil
	}

	resp, err := a.youtube.Videos.List([]string{"snippet"}).
		Chart("mostPopular").
		RegionCode(a.cfg.Trends.RegionCode).
		MaxResults(int64(a.cfg.Trends.MaxResults)).
		Context(ctx).
		Do()
	if err != nil {
		log.Printf("[trends] Warning: youtube trending fetch failed: %v", err)
		return nil
	}

	var titles []string
	for _, item := range resp.Items {
		if item.Snippet != nil {
			titles = append(titles, item.Snippet.Title)
		}
	}
	return titles
}

// redditHot fetches hot post titles from the configured subreddits.
func (a *Analyzer) redditHot(ctx context.Context) []string {
	if a.reddit == nil {
		return nil
	}

	var titles []string
	for _, sub := range a.cfg.Trends.Subreddits {
		posts, _, err := a.reddit.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{Limit: a.cfg.Trends.MaxResults})
		if err != nil {
			log.Printf("[trends] Warning: r/%s fetch failed: %v", sub, err)
			continue
		}
		for _, post := range posts {
			titles = append(titles, post.Title)
		}
	}
	return titles
}

// pickKeyword scores each niche keyword by how often its words appear
// in trending titles and returns the best match, or a random keyword
// when nothing matches.
func pickKeyword(keywords, titles []string) string {
	best, bestScore := "", 0
	for _, kw := range keywords {
		score := 0
		words := strings.Fields(strings.ToLower(kw))
		for _, title := range titles {
			lower := strings.ToLower(title)
			for _, word := range words {
				if strings.Contains(lower, word) {
					score++
				}
			}
		}
		if score > bestScore {
			best, bestScore = kw, score
		}
	}
	if best == "" {
		best = keywords[rand.Intn(len(keywords))]
	}
	return best
}
