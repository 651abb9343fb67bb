package editor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandRunner abstracts subprocess execution so the engine can be
// tested without ffmpeg installed.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner executes commands via os/exec and returns captured stdout.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out: %w", name, ctx.Err())
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, tail(stderr.String(), 400))
	}
	return stdout.String(), nil
}

// tail keeps the last n bytes of subprocess noise for error messages.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
