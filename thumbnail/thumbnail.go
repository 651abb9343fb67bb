package thumbnail

import (
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/fogleman/gg"

	"shorts-agent/config"
)

const (
	width  = 1280
	height = 720
)

// candidate fonts, tried in order. When none loads the library's
// built-in face is used, which is ugly but never fatal.
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
}

// Renderer draws a simple title-card thumbnail: a solid background with
// the wrapped, shadowed topic text centered on it.
type Renderer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render writes a thumbnail for title to outputPath.
func (r *Renderer) Render(title, outputPath string) (string, error) {
	log.Printf("[thumbnail] Creating thumbnail for: %s", title)

	dc := gg.NewContext(width, height)
	dc.SetRGB(0.1+0.5*rand.Float64(), 0.1+0.5*rand.Float64(), 0.1+0.5*rand.Float64())
	dc.Clear()

	loaded := false
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := dc.LoadFontFace(path, 80); err == nil {
			loaded = true
			break
		}
	}
	if !loaded {
		log.Printf("[thumbnail] Warning: no system font found, using built-in face")
	}

	lines := wrapTitle(title, 15)
	y := float64(height)/2 - float64(len(lines)-1)*50
	for _, line := range lines {
		w, h := dc.MeasureString(line)
		x := (float64(width) - w) / 2

		dc.SetRGB(0, 0, 0)
		dc.DrawString(line, x+3, y+3)
		dc.SetRGB(1, 1, 1)
		dc.DrawString(line, x, y)

		y += h + 20
	}

	if err := gg.SaveJPG(outputPath, dc.Image(), 90); err != nil {
		return "", err
	}

	log.Printf("[thumbnail] Thumbnail saved to %s", outputPath)
	return outputPath, nil
}

// wrapTitle breaks the title into lines of roughly maxChars characters,
// never splitting a word.
func wrapTitle(title string, maxChars int) []string {
	var lines []string
	var current []string
	for _, word := range strings.Fields(title) {
		current = append(current, word)
		if len(strings.Join(current, " ")) > maxChars {
			lines = append(lines, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}
