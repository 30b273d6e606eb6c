package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundbed/internal/audio"
)

func constantBuffer(seconds, value float64) *audio.Buffer {
	b := audio.NewSilence(seconds, audio.StandardSampleRate, audio.StandardChannels)
	for i := range b.Samples {
		b.Samples[i] = value
	}
	return b
}

func TestMixAppliesBgmLevel(t *testing.T) {
	original := audio.NewSilence(10, audio.StandardSampleRate, audio.StandardChannels)
	bgm := constantBuffer(10, 0.5)

	mix, report, err := NewMixer(0.3).Mix(original, bgm)
	require.NoError(t, err)
	assert.False(t, report.ClippingGuard)
	assert.Equal(t, 1.0, report.ScaledBy)

	// Away from the 1.5s edge fades, the mix carries exactly level*bgm.
	mid := mix.Frames() / 2
	assert.InDelta(t, 0.15, mix.Samples[mid*audio.StandardChannels], 1e-9)
}

func TestMixPadsAndTrimsBgmToOriginal(t *testing.T) {
	original := audio.NewSilence(10, audio.StandardSampleRate, audio.StandardChannels)

	short := constantBuffer(5, 0.5)
	mix, _, err := NewMixer(0.5).Mix(original, short)
	require.NoError(t, err)
	assert.Equal(t, original.Frames(), mix.Frames())
	assert.Zero(t, mix.Samples[len(mix.Samples)-1])

	long := constantBuffer(20, 0.5)
	mix, _, err = NewMixer(0.5).Mix(original, long)
	require.NoError(t, err)
	assert.Equal(t, original.Frames(), mix.Frames())
}

func TestMixClippingGuardRescalesUniformly(t *testing.T) {
	original := constantBuffer(10, 0.9)
	// Two distinct amplitudes in the original so the ratio check means
	// something.
	original.Samples[0] = 0.45
	original.Samples[1] = 0.45
	bgm := constantBuffer(10, 1.0)

	mix, report, err := NewMixer(0.5).Mix(original, bgm)
	require.NoError(t, err)
	assert.True(t, report.ClippingGuard)
	assert.Less(t, report.ScaledBy, 1.0)
	assert.LessOrEqual(t, mix.Peak(), 1.0)

	// Uniform rescale preserves the ratio between any two samples.
	mid := mix.Frames() / 2
	ratio := mix.Samples[0] / mix.Samples[mid*audio.StandardChannels]
	assert.InDelta(t, 0.45/1.4, ratio, 0.01)
}

func TestMixNeverExceedsFullScale(t *testing.T) {
	original := constantBuffer(5, 0.95)
	bgm := constantBuffer(5, 0.95)

	mix, _, err := NewMixer(1.0).Mix(original, bgm)
	require.NoError(t, err)
	assert.LessOrEqual(t, mix.Peak(), 1.0)
}

func TestMixZeroLevelLeavesOriginalUntouched(t *testing.T) {
	original := constantBuffer(5, 0.4)
	bgm := constantBuffer(5, 0.8)

	mix, report, err := NewMixer(0).Mix(original, bgm)
	require.NoError(t, err)
	assert.Zero(t, report.BgmRMS)
	for i := 0; i < len(mix.Samples); i += 5000 {
		assert.InDelta(t, 0.4, mix.Samples[i], 1e-9)
	}
}

func TestMixRejectsFormatMismatch(t *testing.T) {
	original := audio.NewSilence(5, audio.StandardSampleRate, audio.StandardChannels)
	mono := &audio.Buffer{SampleRate: audio.StandardSampleRate, Channels: 1, Samples: make([]float64, 100)}

	_, _, err := NewMixer(0.3).Mix(original, mono)
	assert.Error(t, err)
}

func TestMixRejectsBadLevel(t *testing.T) {
	original := audio.NewSilence(1, audio.StandardSampleRate, audio.StandardChannels)
	bgm := audio.NewSilence(1, audio.StandardSampleRate, audio.StandardChannels)

	_, _, err := NewMixer(1.5).Mix(original, bgm)
	assert.Error(t, err)
	_, _, err = NewMixer(-0.1).Mix(original, bgm)
	assert.Error(t, err)
}
