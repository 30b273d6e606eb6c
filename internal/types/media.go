package types

import "context"

// TranscriptSegment is one time-stamped piece of recognized speech, as
// returned by the transcription collaborator.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ThemeRange is a theme-annotated time range produced by the analysis
// collaborator. Ranges may arrive gapped or overlapping; the segment store
// normalizes them.
type ThemeRange struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Theme       string  `json:"theme"`
	Mood        string  `json:"mood"`
	Description string  `json:"description,omitempty"`
}

// Segment is a normalized, contiguous, non-overlapping slice of the source
// timeline. Segments are immutable once the store has produced them.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text,omitempty"`
	Theme string  `json:"theme"`
	Mood  string  `json:"mood"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// ClipSource records where a segment's music clip came from.
type ClipSource string

const (
	ClipSourceLibrary     ClipSource = "library"
	ClipSourceSynthesized ClipSource = "synthesized"
)

// AssetRef points at one candidate clip in the asset library.
type AssetRef struct {
	Key      string  `json:"key"`
	Theme    string  `json:"theme"`
	Mood     string  `json:"mood,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	URI      string  `json:"uri"`
}

// Transcriber converts speech in a conformed WAV file into timed transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]TranscriptSegment, error)
}

// ChatCompleter answers a single prompt; used for theme/mood analysis.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, prompt string) (string, error)
}

// AssetLibrary is the indexed BGM asset collaborator. Implementations may be
// backed by an object store or a local directory; when neither is configured
// Available returns false and the synthesizer runs procedurally only.
type AssetLibrary interface {
	Available() bool
	Search(ctx context.Context, theme, mood string) ([]AssetRef, error)
	Fetch(ctx context.Context, ref AssetRef, destPath string) error
}

// AssetUploader is implemented by libraries that accept new clips.
type AssetUploader interface {
	Store(ctx context.Context, theme, name, localPath string) (string, error)
}
