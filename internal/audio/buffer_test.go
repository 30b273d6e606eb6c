package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantBuffer(seconds, value float64) *Buffer {
	b := NewSilence(seconds, StandardSampleRate, StandardChannels)
	for i := range b.Samples {
		b.Samples[i] = value
	}
	return b
}

func TestFramesAndDuration(t *testing.T) {
	b := NewSilence(2.5, StandardSampleRate, StandardChannels)
	assert.Equal(t, 110250, b.Frames())
	assert.InDelta(t, 2.5, b.Duration(), 1e-9)
}

func TestGainAndPeakAndRMS(t *testing.T) {
	b := constantBuffer(0.1, 0.8)
	assert.InDelta(t, 0.8, b.Peak(), 1e-9)
	assert.InDelta(t, 0.8, b.RMS(), 1e-9)

	b.Gain(0.5)
	assert.InDelta(t, 0.4, b.Peak(), 1e-9)
}

func TestFitFrames(t *testing.T) {
	b := constantBuffer(1.0, 0.5)

	trimmed := b.FitFrames(1000)
	assert.Equal(t, 1000, trimmed.Frames())
	assert.InDelta(t, 0.5, trimmed.Samples[0], 1e-9)

	padded := b.FitFrames(b.Frames() + 500)
	assert.Equal(t, b.Frames()+500, padded.Frames())
	assert.Zero(t, padded.Samples[len(padded.Samples)-1])

	same := b.FitFrames(b.Frames())
	assert.Same(t, b, same)
}

func TestFadeInFadeOut(t *testing.T) {
	b := constantBuffer(1.0, 1.0)
	b.FadeIn(0.5)
	b.FadeOut(0.5)

	assert.Zero(t, b.Samples[0])
	last := b.Samples[len(b.Samples)-1]
	assert.Less(t, last, 0.01)

	// Quarter way through a half-second fade-in: gain is sin(pi/4).
	f := FramesFor(0.25, StandardSampleRate)
	assert.InDelta(t, math.Sin(math.Pi/4), b.Samples[f*StandardChannels], 0.01)
}

func TestLoopToReturnsReceiverWhenLongEnough(t *testing.T) {
	b := constantBuffer(2.0, 0.5)
	looped := b.LoopTo(1.5, 0.2)
	assert.Same(t, b, looped)
}

func TestLoopToCoversDuration(t *testing.T) {
	b := constantBuffer(1.0, 0.5)
	looped := b.LoopTo(3.2, 0.2)

	require.GreaterOrEqual(t, looped.Frames(), FramesFor(3.2, StandardSampleRate))

	// Crossfaded seams on a constant signal must not dip to silence or
	// spike: every frame stays in a sane range around the source level.
	for f := 0; f < looped.Frames(); f++ {
		s := looped.Samples[f*StandardChannels]
		assert.Greater(t, s, 0.3, "frame %d dipped", f)
		assert.Less(t, s, 0.75, "frame %d spiked", f)
	}
}

func TestOverlayAt(t *testing.T) {
	base := NewSilence(1.0, StandardSampleRate, StandardChannels)
	clip := constantBuffer(0.1, 0.25)

	base.OverlayAt(clip, 100)
	base.OverlayAt(clip, 100)

	assert.Zero(t, base.Samples[0])
	assert.InDelta(t, 0.5, base.Samples[100*StandardChannels], 1e-9)

	// Overlays past the end are dropped, not panicking.
	base.OverlayAt(clip, base.Frames()-10)
	base.OverlayAt(clip, -clip.Frames()-10)
}

func TestEqualPowerGains(t *testing.T) {
	out, in := EqualPowerGains(0)
	assert.Equal(t, 1.0, out)
	assert.Equal(t, 0.0, in)

	out, in = EqualPowerGains(1)
	assert.Equal(t, 0.0, out)
	assert.Equal(t, 1.0, in)

	out, in = EqualPowerGains(0.5)
	assert.InDelta(t, out, in, 1e-9)
	assert.InDelta(t, 1.0, out*out+in*in, 1e-9)
}

func TestWavRoundTrip(t *testing.T) {
	b := NewSilence(0.25, StandardSampleRate, StandardChannels)
	for f := 0; f < b.Frames(); f++ {
		v := 0.4 * math.Sin(2*math.Pi*440*float64(f)/StandardSampleRate)
		b.Samples[f*StandardChannels] = v
		b.Samples[f*StandardChannels+1] = v
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, WriteWAV(path, b))

	got, err := ReadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, b.SampleRate, got.SampleRate)
	assert.Equal(t, b.Channels, got.Channels)
	assert.Equal(t, b.Frames(), got.Frames())

	// 16-bit quantization keeps samples within a couple of LSBs.
	for i := 0; i < len(b.Samples); i += 1000 {
		assert.InDelta(t, b.Samples[i], got.Samples[i], 1.0/16000)
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav"), 0o644))

	_, err := ReadWAV(path)
	assert.Error(t, err)
}
