package audio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"shorts-agent/config"
)

// Synthesizer renders narration text to an audio file by shelling out
// to edge-tts (free Microsoft neural voices).
type Synthesizer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Synthesize writes spoken audio for text to outputPath.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outputPath string) (string, error) {
	if _, err := exec.LookPath("edge-tts"); err != nil {
		return "", fmt.Errorf("edge-tts not found, install with: pip install edge-tts")
	}

	log.Printf("[audio] Generating audio to %s...", outputPath)

	cmd := exec.CommandContext(ctx, "edge-tts",
		"--voice", s.cfg.Audio.Voice,
		"--text", text,
		"--write-media", outputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("edge-tts: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	log.Printf("[audio] ✅ Audio generation complete")
	return outputPath, nil
}
