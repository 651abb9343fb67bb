package editor

import (
	"errors"
	"log"

	"shorts-agent/types"
)

// ErrNoValidClips is returned when not a single clip could be scheduled.
var ErrNoValidClips = errors.New("no valid clips")

// maxPasses bounds cyclic reuse of the clip list so scheduling always
// terminates, even when every clip is short or unreadable.
const maxPasses = 32

// segment is one scheduled slice of a source clip. Segments are always
// taken from the head of the clip.
type segment struct {
	Clip      types.ClipDescriptor
	StartSec  float64
	LengthSec float64
}

// buildPlan walks the clip list cyclically, taking capped head segments
// until the scheduled total covers totalSec. Clips that fail to probe
// are skipped and never retried. The plan may come up short when the
// pass bound is hit; the caller clamps the output to the shorter of the
// visual track and the narration anyway.
func buildPlan(clipPaths []string, totalSec, segmentCap float64, probe func(string) (types.ClipDescriptor, error)) ([]segment, error) {
	if len(clipPaths) == 0 {
		return nil, errors.New("clip list is empty")
	}

	probed := make(map[string]*types.ClipDescriptor) // nil entry marks an unusable clip
	var plan []segment
	var scheduled float64

	for pass := 0; pass < maxPasses && scheduled < totalSec; pass++ {
		progressed := false
		for _, path := range clipPaths {
			if scheduled >= totalSec {
				break
			}

			desc, seen := probed[path]
			if !seen {
				d, err := probe(path)
				if err != nil || d.DurationSec <= 0 || d.Width <= 0 || d.Height <= 0 {
					log.Printf("[editor] Warning: skipping clip %s: %v", path, err)
					probed[path] = nil
					continue
				}
				desc = &d
				probed[path] = desc
			}
			if desc == nil {
				continue
			}

			length := desc.DurationSec
			if segmentCap < length {
				length = segmentCap
			}
			if remaining := totalSec - scheduled; remaining < length {
				length = remaining
			}
			if length <= 0 {
				continue
			}

			plan = append(plan, segment{Clip: *desc, LengthSec: length})
			scheduled += length
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if len(plan) == 0 {
		return nil, ErrNoValidClips
	}
	return plan, nil
}
