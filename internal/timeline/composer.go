// Package timeline joins per-segment clips into one continuous BGM track,
// crossfading across segment boundaries so theme changes are not abrupt.
package timeline

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"soundbed/internal/audio"
	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/errors"
)

const defaultCrossfadeSeconds = 2.0

// loopFadeSeconds matches the seam fade used when a clip must be extended to
// cover its crossfade overhang.
const loopFadeSeconds = 1.0

type Composer struct {
	// Crossfade is the boundary window in seconds. Windows shrink at short
	// segments so a fade never consumes more than half a segment.
	Crossfade float64
	// EdgeFade is the global fade-in/fade-out in seconds at the very start
	// and end of the track, clamped like boundary windows.
	EdgeFade float64
}

func NewComposer(crossfade float64) *Composer {
	if crossfade <= 0 {
		crossfade = defaultCrossfadeSeconds
	}
	return &Composer{Crossfade: crossfade, EdgeFade: crossfade}
}

// Compose overlays the clips on a single timeline covering exactly the
// segments' span. Each interior boundary gets an equal-power crossfade: both
// neighboring clips are extended half a window past the boundary and faded
// against each other. The track itself fades in from silence and out to
// silence. The output length is exact regardless of the clip lengths
// supplied.
func (c *Composer) Compose(segments []types.Segment, clips []*audio.Buffer) (*audio.Buffer, error) {
	if len(segments) == 0 {
		return nil, errors.New(errors.CodeInvalidSegmentData, "no segments to compose")
	}
	if len(segments) != len(clips) {
		return nil, errors.New(errors.CodeInvalidSegmentData,
			fmt.Sprintf("segment count %d does not match clip count %d", len(segments), len(clips)))
	}

	rate := clips[0].SampleRate
	channels := clips[0].Channels
	for i, clip := range clips {
		if clip.SampleRate != rate || clip.Channels != channels {
			return nil, errors.New(errors.CodeAudioDecodeFailed,
				fmt.Sprintf("clip %d format %dHz/%dch differs from %dHz/%dch", i, clip.SampleRate, clip.Channels, rate, channels))
		}
	}

	total := segments[len(segments)-1].End
	out := audio.New(audio.FramesFor(total, rate), rate, channels)

	// windows[i] is the crossfade width in frames at the boundary between
	// segment i and i+1.
	windows := make([]int, len(segments)-1)
	for i := range windows {
		w := c.Crossfade
		if half := segments[i].Duration() / 2; half < w {
			w = half
		}
		if half := segments[i+1].Duration() / 2; half < w {
			w = half
		}
		windows[i] = audio.FramesFor(w, rate)
	}

	for i, seg := range segments {
		headExt, tailExt := 0, 0
		if i > 0 {
			headExt = windows[i-1] - windows[i-1]/2
		}
		if i < len(windows) {
			tailExt = windows[i] / 2
		}

		segFrames := audio.FramesFor(seg.End, rate) - audio.FramesFor(seg.Start, rate)
		needFrames := segFrames + headExt + tailExt

		clip := clips[i].LoopTo(float64(needFrames)/float64(rate), loopFadeSeconds)
		if clip == clips[i] {
			clip = clip.Clone()
		}
		clip = clip.FitFrames(needFrames)

		if headExt > 0 {
			clip.FadeIn(float64(windows[i-1]) / float64(rate))
		}
		if tailExt > 0 {
			clip.FadeOut(float64(windows[i]) / float64(rate))
		}

		startFrame := audio.FramesFor(seg.Start, rate) - headExt
		out.OverlayAt(clip, startFrame)

		log.GetLogger().Debug("placed segment clip",
			zap.Int("segment", i), zap.String("theme", seg.Theme),
			zap.Float64("start", seg.Start), zap.Float64("end", seg.End))
	}

	if c.EdgeFade > 0 {
		out.FadeIn(math.Min(c.EdgeFade, segments[0].Duration()/2))
		out.FadeOut(math.Min(c.EdgeFade, segments[len(segments)-1].Duration()/2))
	}
	return out, nil
}
