// Package audio holds the in-memory PCM representation shared by the
// synthesizer, composer and mixer, plus WAV encode/decode. All pipeline audio
// is normalized to 44.1kHz stereo float64 before it reaches this package.
package audio

import "math"

const (
	StandardSampleRate = 44100
	StandardChannels   = 2
)

// Buffer is an interleaved float64 PCM buffer. Samples are nominally in
// [-1, 1]; intermediate sums may exceed that range until the mixer's
// clipping guard runs.
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float64
}

// New returns a zeroed buffer of the given length in frames.
func New(frames, sampleRate, channels int) *Buffer {
	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    make([]float64, frames*channels),
	}
}

// NewSilence returns a zeroed buffer covering the given duration.
func NewSilence(seconds float64, sampleRate, channels int) *Buffer {
	return New(FramesFor(seconds, sampleRate), sampleRate, channels)
}

// FramesFor converts a duration in seconds to a frame count.
func FramesFor(seconds float64, sampleRate int) int {
	return int(math.Round(seconds * float64(sampleRate)))
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	samples := make([]float64, len(b.Samples))
	copy(samples, b.Samples)
	return &Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Samples: samples}
}

// Gain scales every sample by factor.
func (b *Buffer) Gain(factor float64) {
	for i := range b.Samples {
		b.Samples[i] *= factor
	}
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, s := range b.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root-mean-square amplitude across all samples.
func (b *Buffer) RMS() float64 {
	if len(b.Samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range b.Samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(b.Samples)))
}

// FitFrames returns a buffer of exactly the requested frame count: truncated
// if the receiver is longer, zero-padded if shorter. The receiver is returned
// unchanged when it already fits.
func (b *Buffer) FitFrames(frames int) *Buffer {
	if b.Frames() == frames {
		return b
	}
	out := New(frames, b.SampleRate, b.Channels)
	copy(out.Samples, b.Samples)
	return out
}

// FadeIn applies an equal-power ramp from silence over the first window.
func (b *Buffer) FadeIn(seconds float64) {
	frames := FramesFor(seconds, b.SampleRate)
	if frames > b.Frames() {
		frames = b.Frames()
	}
	for f := 0; f < frames; f++ {
		_, in := EqualPowerGains(float64(f) / float64(frames))
		for c := 0; c < b.Channels; c++ {
			b.Samples[f*b.Channels+c] *= in
		}
	}
}

// FadeOut applies an equal-power ramp to silence over the last window.
func (b *Buffer) FadeOut(seconds float64) {
	frames := FramesFor(seconds, b.SampleRate)
	total := b.Frames()
	if frames > total {
		frames = total
	}
	start := total - frames
	for f := start; f < total; f++ {
		out, _ := EqualPowerGains(float64(f-start) / float64(frames))
		for c := 0; c < b.Channels; c++ {
			b.Samples[f*b.Channels+c] *= out
		}
	}
}

// LoopTo repeats the buffer until it covers at least the requested duration,
// crossfading at every loop seam so the repeat point is not audible. Returns
// the receiver unchanged when it is already long enough.
func (b *Buffer) LoopTo(seconds, loopFade float64) *Buffer {
	need := FramesFor(seconds, b.SampleRate)
	if b.Frames() >= need {
		return b
	}

	fadeFrames := FramesFor(loopFade, b.SampleRate)
	if fadeFrames > b.Frames()/2 {
		fadeFrames = b.Frames() / 2
	}
	step := b.Frames() - fadeFrames
	if step <= 0 {
		step = b.Frames()
		fadeFrames = 0
	}

	out := New(need, b.SampleRate, b.Channels)
	tailStart := b.Frames() - fadeFrames
	for pos := 0; pos < need; pos += step {
		nextOverlaps := pos+step < need
		for f := 0; f < b.Frames(); f++ {
			dst := pos + f
			if dst >= need {
				break
			}
			gain := 1.0
			if pos > 0 && f < fadeFrames {
				_, in := EqualPowerGains(float64(f) / float64(fadeFrames))
				gain *= in
			}
			if nextOverlaps && fadeFrames > 0 && f >= tailStart {
				outGain, _ := EqualPowerGains(float64(f-tailStart) / float64(fadeFrames))
				gain *= outGain
			}
			for c := 0; c < b.Channels; c++ {
				out.Samples[dst*b.Channels+c] += b.Samples[f*b.Channels+c] * gain
			}
		}
	}
	return out
}

// OverlayAt adds src into the receiver starting at the given frame offset.
// Samples falling outside the receiver are dropped.
func (b *Buffer) OverlayAt(src *Buffer, atFrame int) {
	total := b.Frames()
	for f := 0; f < src.Frames(); f++ {
		dst := atFrame + f
		if dst < 0 {
			continue
		}
		if dst >= total {
			break
		}
		for c := 0; c < b.Channels && c < src.Channels; c++ {
			b.Samples[dst*b.Channels+c] += src.Samples[f*src.Channels+c]
		}
	}
}
