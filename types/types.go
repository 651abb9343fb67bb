package types

// Stage identifies one ordered step of a production cycle.
type Stage string

const (
	StageIdle              Stage = "Idle"
	StageSelectingTopic    Stage = "SelectingTopic"
	StageGeneratingScript  Stage = "GeneratingScript"
	StageSynthesizingAudio Stage = "SynthesizingAudio"
	StageGatheringVisuals  Stage = "GatheringVisuals"
	StageAssemblingVideo   Stage = "AssemblingVideo"
	StageUploading         Stage = "Uploading"
	StageComplete          Stage = "Complete"
	StageFailed            Stage = "Failed"
)

// Running reports whether a stage represents active cycle execution.
func (s Stage) Running() bool {
	switch s {
	case StageSelectingTopic, StageGeneratingScript, StageSynthesizingAudio,
		StageGatheringVisuals, StageAssemblingVideo, StageUploading:
		return true
	default:
		return false
	}
}

// Cycle tracks the full state of one production attempt.
// It lives only for the duration of the cycle and is never persisted.
type Cycle struct {
	ID            string   `json:"id"`
	Stage         Stage    `json:"stage"`
	Topic         string   `json:"topic,omitempty"`
	ScriptText    string   `json:"script_text,omitempty"`
	AudioPath     string   `json:"audio_path,omitempty"`
	ClipPaths     []string `json:"clip_paths,omitempty"`
	VideoPath     string   `json:"video_path,omitempty"`
	ThumbnailPath string   `json:"thumbnail_path,omitempty"`
	RemoteID      string   `json:"remote_id,omitempty"`
	Err           string   `json:"error,omitempty"`
}

// ClipDescriptor is a candidate source clip plus its probed properties.
// Immutable once probed.
type ClipDescriptor struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// EventKind classifies messages pushed to status observers.
type EventKind string

const (
	EventLog    EventKind = "log"
	EventStatus EventKind = "status"
	EventError  EventKind = "error"
	EventState  EventKind = "state"
)

// StatusEvent is one ephemeral message for connected observers.
// Delivery is at-most-once per observer with no replay.
type StatusEvent struct {
	Kind EventKind `json:"type"`
	Data any       `json:"data"`
}

// VideoMetadata holds upload metadata derived from the selected topic.
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
}
