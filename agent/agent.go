package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"shorts-agent/config"
	"shorts-agent/types"
)

// ErrAlreadyRunning is returned when Start is called while a cycle is live.
var ErrAlreadyRunning = errors.New("cycle already running")

// ErrNotAuthenticated is returned when upload is attempted without credentials.
var ErrNotAuthenticated = errors.New("not authenticated")

// TrendSource picks a video topic from current trends.
type TrendSource interface {
	SelectTopic(ctx context.Context) (string, error)
}

// ScriptSource turns a topic into narration text.
type ScriptSource interface {
	Generate(ctx context.Context, topic, durationClass string) (string, error)
}

// VoiceSynthesizer renders narration text to a local audio file.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) (string, error)
}

// StockMediaSource fetches stock clips matching a query and returns local paths.
type StockMediaSource interface {
	Fetch(ctx context.Context, query string, count int) ([]string, error)
}

// VideoAssembler builds the final video from narration and stock clips.
type VideoAssembler interface {
	Assemble(ctx context.Context, narrationPath string, clipPaths []string, captionText, outputPath string) (string, error)
}

// ThumbnailRenderer draws a thumbnail for the video. Optional.
type ThumbnailRenderer interface {
	Render(title, outputPath string) (string, error)
}

// Publisher uploads the finished video to the remote platform.
type Publisher interface {
	IsAuthenticated() bool
	Upload(ctx context.Context, videoPath string, meta types.VideoMetadata) (string, error)
}

// Adapters bundles the external collaborators one cycle runs through.
type Adapters struct {
	Trends    TrendSource
	Script    ScriptSource
	Voice     VoiceSynthesizer
	Stock     StockMediaSource
	Editor    VideoAssembler
	Thumbnail ThumbnailRenderer
	Publisher Publisher
}

// Status is a point-in-time snapshot of the agent, safe to read while a
// cycle runs.
type Status struct {
	Stage         types.Stage `json:"stage"`
	CurrentAction string      `json:"current_action"`
	IsRunning     bool        `json:"is_running"`
}

// Agent drives production cycles through their stage sequence. At most
// one cycle is live at a time; the check-and-set in Start is atomic.
type Agent struct {
	cfg  *config.Config
	deps Adapters
	hub  *Hub

	mu      sync.RWMutex
	stage   types.Stage
	action  string
	running bool

	stopRequested atomic.Bool
}

func New(cfg *config.Config, deps Adapters) *Agent {
	return &Agent{
		cfg:    cfg,
		deps:   deps,
		hub:    NewHub(),
		stage:  types.StageIdle,
		action: "Idle",
	}
}

// Subscribe attaches a status observer. See Hub.Subscribe.
func (a *Agent) Subscribe() (<-chan types.StatusEvent, func()) {
	return a.hub.Subscribe()
}

// Start begins a new cycle and returns immediately. If a cycle is
// already live it returns ErrAlreadyRunning and changes nothing.
func (a *Agent) Start() error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.running = true
	a.stopRequested.Store(false)
	a.mu.Unlock()

	c := &types.Cycle{
		ID:    uuid.NewString()[:8],
		Stage: types.StageIdle,
	}
	go a.runCycle(c)
	return nil
}

// Stop requests cooperative cancellation. The flag is honored between
// stages only: an in-flight external call runs to completion first.
func (a *Agent) Stop() {
	a.stopRequested.Store(true)
}

// Status returns the current stage snapshot.
func (a *Agent) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{Stage: a.stage, CurrentAction: a.action, IsRunning: a.running}
}

// RunEvery starts a cycle immediately and then on a fixed interval.
// Fires that land while a cycle is still running are absorbed by the
// single-flight guard.
func (a *Agent) RunEvery(interval time.Duration) {
	go func() {
		if err := a.Start(); err != nil {
			log.Printf("[agent] initial scheduled cycle: %v", err)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := a.Start(); errors.Is(err, ErrAlreadyRunning) {
				log.Printf("[agent] scheduled cycle skipped: previous cycle still running")
			}
		}
	}()
}

type stageStep struct {
	stage  types.Stage
	action string
	run    func(context.Context, *types.Cycle) error
}

// steps is the ordered stage table for one cycle. Each stage's output
// feeds the next through the cycle itself.
func (a *Agent) steps() []stageStep {
	return []stageStep{
		{types.StageSelectingTopic, "Analyzing Trends...", a.selectTopic},
		{types.StageGeneratingScript, "Generating Script...", a.generateScript},
		{types.StageSynthesizingAudio, "Generating Audio...", a.synthesizeAudio},
		{types.StageGatheringVisuals, "Gathering Visuals...", a.gatherVisuals},
		{types.StageAssemblingVideo, "Editing Video...", a.assembleVideo},
		{types.StageUploading, "Uploading...", a.upload},
	}
}

func (a *Agent) runCycle(c *types.Cycle) {
	ctx := context.Background()

	a.logf("🎬 Cycle %s starting", c.ID)
	a.hub.Status("Starting Cycle...")
	a.hub.State(true)

	for _, step := range a.steps() {
		if a.stopRequested.Load() {
			a.logf("Stop requested, cycle %s halted before %s", c.ID, step.stage)
			a.toIdle(c)
			return
		}
		a.setStage(c, step.stage, step.action)
		if err := step.run(ctx, c); err != nil {
			a.fail(c, err)
			return
		}
	}
	a.complete(c)
}

func (a *Agent) setStage(c *types.Cycle, stage types.Stage, action string) {
	a.mu.Lock()
	a.stage = stage
	a.action = action
	a.mu.Unlock()
	c.Stage = stage

	log.Printf("[agent] %s", action)
	a.hub.Status(action)
}

func (a *Agent) fail(c *types.Cycle, err error) {
	msg := err.Error()
	c.Err = msg
	c.Stage = types.StageFailed

	a.mu.Lock()
	a.stage = types.StageFailed
	a.action = "Error: " + msg
	a.mu.Unlock()

	log.Printf("[agent] ❌ Cycle %s failed: %s", c.ID, msg)
	a.hub.Error(msg)
	a.toIdle(c)
}

func (a *Agent) complete(c *types.Cycle) {
	c.Stage = types.StageComplete

	a.mu.Lock()
	a.stage = types.StageComplete
	a.action = "Cycle Complete"
	a.mu.Unlock()

	a.logf("✅ Cycle %s complete", c.ID)
	a.hub.Status("Cycle Complete")
	a.toIdle(c)
}

// toIdle collapses a terminal (or cancelled) cycle back to idle so a
// new one may start. The cycle itself is discarded, never persisted.
func (a *Agent) toIdle(c *types.Cycle) {
	a.mu.Lock()
	a.stage = types.StageIdle
	a.running = false
	a.mu.Unlock()
	a.hub.State(false)
}

func (a *Agent) logf(format string, args ...any) {
	log.Printf("[agent] "+format, args...)
	a.hub.Log(fmt.Sprintf(format, args...))
}

// ─────────────────────────────────────────────
// Stages
// ─────────────────────────────────────────────

func (a *Agent) selectTopic(ctx context.Context, c *types.Cycle) error {
	topic, err := a.deps.Trends.SelectTopic(ctx)
	if err != nil {
		return fmt.Errorf("trend analysis: %w", err)
	}
	if strings.TrimSpace(topic) == "" {
		return errors.New("no topic selected")
	}
	c.Topic = topic
	a.logf("Selected Topic: %s", topic)
	return nil
}

func (a *Agent) generateScript(ctx context.Context, c *types.Cycle) error {
	text, err := a.deps.Script.Generate(ctx, c.Topic, a.cfg.Script.DurationClass)
	if err != nil {
		return fmt.Errorf("script generation: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("script generation returned empty text")
	}
	c.ScriptText = text
	a.logf("Script generated (%d words)", len(strings.Fields(text)))
	return nil
}

func (a *Agent) synthesizeAudio(ctx context.Context, c *types.Cycle) error {
	out := filepath.Join(a.cfg.Paths.Assets, "temp_audio."+a.cfg.Audio.OutputFormat)
	path, err := a.deps.Voice.Synthesize(ctx, c.ScriptText, out)
	if err != nil {
		return fmt.Errorf("audio synthesis: %w", err)
	}
	c.AudioPath = path
	return nil
}

func (a *Agent) gatherVisuals(ctx context.Context, c *types.Cycle) error {
	query := searchQuery(c.Topic)
	clips, err := a.deps.Stock.Fetch(ctx, query, a.cfg.Visuals.ClipCount)
	if err != nil {
		return fmt.Errorf("stock media search: %w", err)
	}
	if len(clips) == 0 {
		return errors.New("no usable stock clips found")
	}
	c.ClipPaths = clips
	a.logf("Fetched %d clip(s) for query %q", len(clips), query)
	return nil
}

func (a *Agent) assembleVideo(ctx context.Context, c *types.Cycle) error {
	out := filepath.Join(a.cfg.Paths.Assets, "final_video.mp4")
	video, err := a.deps.Editor.Assemble(ctx, c.AudioPath, c.ClipPaths, c.ScriptText, out)
	if err != nil {
		return fmt.Errorf("video assembly: %w", err)
	}
	c.VideoPath = video

	// Thumbnail is a nice-to-have: a draw failure never sinks the cycle.
	if a.deps.Thumbnail != nil {
		thumb := filepath.Join(a.cfg.Paths.Assets, "thumbnail.jpg")
		if path, err := a.deps.Thumbnail.Render(c.Topic, thumb); err != nil {
			a.logf("⚠️  Thumbnail render failed: %v, continuing without one", err)
		} else {
			c.ThumbnailPath = path
		}
	}
	return nil
}

func (a *Agent) upload(ctx context.Context, c *types.Cycle) error {
	if !a.deps.Publisher.IsAuthenticated() {
		return fmt.Errorf("%w: run /auth before starting a cycle that uploads", ErrNotAuthenticated)
	}

	meta := metadataFor(c.Topic, a.cfg)
	id, err := a.deps.Publisher.Upload(ctx, c.VideoPath, meta)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	c.RemoteID = id
	a.logf("Uploaded! ID: %s", id)
	return nil
}

// searchQuery derives the stock-footage query from the topic: the first
// two words carry the subject.
func searchQuery(topic string) string {
	words := strings.Fields(topic)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

func metadataFor(topic string, cfg *config.Config) types.VideoMetadata {
	tags := []string{"shorts", "ai", "facts"}
	if words := strings.Fields(topic); len(words) > 0 {
		tags = append(tags, words[0])
	}
	return types.VideoMetadata{
		Title:       topic,
		Description: fmt.Sprintf("An AI generated video about %s.\n\n#shorts #ai #facts", topic),
		Tags:        tags,
		CategoryID:  cfg.Upload.CategoryID,
	}
}
