package thumbnail

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-agent/config"
)

func TestWrapTitle(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{"The Future of Artificial Intelligence", []string{"The Future of", "Artificial Intelligence"}},
		{"Coding", []string{"Coding"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := wrapTitle(tt.title, 10)
		if len(got) != len(tt.want) {
			t.Errorf("wrapTitle(%q) = %v, want %v", tt.title, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("wrapTitle(%q)[%d] = %q, want %q", tt.title, i, got[i], tt.want[i])
			}
		}
	}
}

func TestWrapTitleNeverSplitsWords(t *testing.T) {
	for _, line := range wrapTitle("supercalifragilistic short words here", 8) {
		for _, word := range strings.Fields(line) {
			if word == "" {
				t.Fatalf("empty word in line %q", line)
			}
		}
	}
}

func TestRenderWritesJPEG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "thumbnail.jpg")
	r := New(config.Default())

	path, err := r.Render("The Future of AI", out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if path != out {
		t.Fatalf("path = %s, want %s", path, out)
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatalf("no thumbnail written: %v", err)
	}
	if fi.Size() == 0 {
		t.Fatal("thumbnail is empty")
	}
}
