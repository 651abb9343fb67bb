package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shorts-agent/config"
	"shorts-agent/types"
)

// Assembler turns a narration track and a pool of stock clips into one
// portrait video whose duration matches the narration exactly. All
// transcoding happens in an external ffmpeg/ffprobe subprocess under a
// hard wall-clock timeout.
type Assembler struct {
	cfg         *config.Config
	runner      commandRunner
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

func New(cfg *config.Config) *Assembler {
	return &Assembler{
		cfg:         cfg,
		runner:      execRunner{},
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		timeout:     time.Duration(cfg.Editor.FFmpegTimeoutSec) * time.Second,
	}
}

// Assemble builds the final video at outputPath. The narration is the
// only audio stream in the output; any audio embedded in the source
// clips is dropped. On failure no file is left at outputPath and all
// intermediate artifacts are removed.
func (a *Assembler) Assemble(ctx context.Context, narrationPath string, clipPaths []string, captionText, outputPath string) (string, error) {
	if len(clipPaths) == 0 {
		return "", errors.New("clip list is empty")
	}

	total, err := a.probeDuration(ctx, narrationPath)
	if err != nil {
		return "", fmt.Errorf("probe narration: %w", err)
	}
	log.Printf("[editor] Narration duration: %.2fs", total)

	plan, err := buildPlan(clipPaths, total, a.cfg.Editor.SegmentMaxSec, func(path string) (types.ClipDescriptor, error) {
		return a.probeClip(ctx, path)
	})
	if err != nil {
		return "", err
	}
	log.Printf("[editor] Scheduled %d segment(s) covering %.2fs", len(plan), total)

	workDir, err := os.MkdirTemp(filepath.Dir(outputPath), "assemble-")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	segmentPaths, err := a.renderSegments(ctx, plan, workDir)
	if err != nil {
		return "", err
	}

	manifest := filepath.Join(workDir, "concat_list.txt")
	if err := writeManifest(manifest, segmentPaths); err != nil {
		return "", fmt.Errorf("write concat manifest: %w", err)
	}

	assembled := filepath.Join(workDir, "assembled.mp4")
	if err := a.mux(ctx, manifest, narrationPath, total, assembled); err != nil {
		return "", err
	}

	if a.cfg.Editor.CaptionsEnabled && strings.TrimSpace(captionText) != "" {
		captioned := filepath.Join(workDir, "captioned.mp4")
		if err := a.overlayCaptions(ctx, assembled, captionText, total, captioned); err != nil {
			log.Printf("[editor] Warning: caption overlay failed: %v — keeping caption-less video", err)
		} else {
			assembled = captioned
		}
	}

	if _, err := os.Stat(assembled); err != nil {
		return "", fmt.Errorf("transcoder produced no output: %w", err)
	}
	if err := os.Rename(assembled, outputPath); err != nil {
		return "", fmt.Errorf("finalize output: %w", err)
	}

	log.Printf("[editor] ✅ Final video ready: %s", outputPath)
	return outputPath, nil
}

// run executes one subprocess invocation under the configured timeout.
func (a *Assembler) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.runner.Run(ctx, name, args...)
}

// probeDuration reads a media file's duration in seconds via ffprobe.
func (a *Assembler) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := a.run(ctx, a.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil || dur <= 0 {
		return 0, fmt.Errorf("unreadable duration for %s: %q", path, strings.TrimSpace(out))
	}
	return dur, nil
}

// probeClip reads a clip's frame dimensions and duration via ffprobe.
func (a *Assembler) probeClip(ctx context.Context, path string) (types.ClipDescriptor, error) {
	out, err := a.run(ctx, a.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return types.ClipDescriptor{}, err
	}

	fields := strings.Fields(out)
	if len(fields) < 3 {
		return types.ClipDescriptor{}, fmt.Errorf("unexpected probe output for %s: %q", path, strings.TrimSpace(out))
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return types.ClipDescriptor{}, fmt.Errorf("parse width for %s: %w", path, err)
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return types.ClipDescriptor{}, fmt.Errorf("parse height for %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return types.ClipDescriptor{}, fmt.Errorf("parse duration for %s: %w", path, err)
	}

	return types.ClipDescriptor{Path: path, DurationSec: dur, Width: width, Height: height}, nil
}

// renderSegments encodes each planned segment to the target frame, with
// source audio stripped. Every segment goes through the identical
// scale-to-fill-then-center-crop filter so the concatenated result has
// uniform dimensions throughout.
func (a *Assembler) renderSegments(ctx context.Context, plan []segment, workDir string) ([]string, error) {
	paths := make([]string, 0, len(plan))
	for i, seg := range plan {
		out := filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp4", i))
		args := []string{"-y",
			"-ss", formatSeconds(seg.StartSec),
			"-i", seg.Clip.Path,
			"-t", formatSeconds(seg.LengthSec),
			"-vf", a.normalizeFilter(),
			"-r", strconv.Itoa(a.cfg.Editor.FPS),
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-pix_fmt", "yuv420p",
			"-an",
			out,
		}
		if _, err := a.run(ctx, a.ffmpegPath, args...); err != nil {
			return nil, fmt.Errorf("render segment %d: %w", i, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}

// normalizeFilter reshapes any source to the target portrait frame
// without distortion: sources proportionally wider than the target are
// scaled to target height and center-cropped in width, narrower ones
// scaled to target width and cropped in height.
func (a *Assembler) normalizeFilter() string {
	w, h := a.cfg.Editor.Width, a.cfg.Editor.Height
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1", w, h, w, h)
}

// mux concatenates the rendered segments and lays the narration under
// them, clamped to the narration duration.
func (a *Assembler) mux(ctx context.Context, manifestPath, narrationPath string, totalSec float64, outPath string) error {
	args := []string{"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-i", narrationPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", formatSeconds(totalSec),
		"-movflags", "+faststart",
		outPath,
	}
	if _, err := a.run(ctx, a.ffmpegPath, args...); err != nil {
		return fmt.Errorf("concat and mux: %w", err)
	}
	return nil
}

// overlayCaptions burns the script text over the video in fixed-size
// word groups, each shown for an equal share of the total duration.
func (a *Assembler) overlayCaptions(ctx context.Context, inPath, text string, totalSec float64, outPath string) error {
	chunks := captionChunks(text, a.cfg.Editor.CaptionWordsPerChunk)
	if len(chunks) == 0 {
		return errors.New("no caption text")
	}

	per := totalSec / float64(len(chunks))
	filters := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		start := float64(i) * per
		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':fontsize=64:fontcolor=white:borderw=4:bordercolor=black:x=(w-text_w)/2:y=h*3/4:enable='between(t,%s,%s)'",
			escapeDrawtext(chunk), formatSeconds(start), formatSeconds(start+per),
		))
	}

	args := []string{"-y",
		"-i", inPath,
		"-vf", strings.Join(filters, ","),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "copy",
		outPath,
	}
	if _, err := a.run(ctx, a.ffmpegPath, args...); err != nil {
		return fmt.Errorf("draw captions: %w", err)
	}
	return nil
}

// captionChunks splits narration text into groups of wordsPerChunk.
func captionChunks(text string, wordsPerChunk int) []string {
	if wordsPerChunk <= 0 {
		wordsPerChunk = 5
	}
	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// escapeDrawtext quotes characters with meaning inside an ffmpeg
// drawtext argument.
func escapeDrawtext(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	).Replace(s)
}

func writeManifest(path string, segmentPaths []string) error {
	var lines []string
	for _, p := range segmentPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
