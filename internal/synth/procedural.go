package synth

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"soundbed/internal/audio"
)

// themePreset drives the layered pad generator. Frequencies are ratios over
// the root so a preset transposes cleanly.
type themePreset struct {
	rootHz      float64
	chordRatios []float64
	pulseHz     float64
	lfoHz       float64
	noiseLevel  float64
}

var themePresets = map[string]themePreset{
	"neutral":   {rootHz: 220.0, chordRatios: []float64{1, 1.5, 2}, pulseHz: 0, lfoHz: 0.10, noiseLevel: 0.02},
	"ambient":   {rootHz: 174.6, chordRatios: []float64{1, 1.189, 1.498}, pulseHz: 0, lfoHz: 0.07, noiseLevel: 0.04},
	"energetic": {rootHz: 261.6, chordRatios: []float64{1, 1.26, 1.5, 2}, pulseHz: 2.0, lfoHz: 0.25, noiseLevel: 0.02},
	"tense":     {rootHz: 138.6, chordRatios: []float64{1, 1.414, 1.888}, pulseHz: 0.5, lfoHz: 0.18, noiseLevel: 0.06},
	"uplifting": {rootHz: 293.7, chordRatios: []float64{1, 1.26, 1.68, 2}, pulseHz: 1.0, lfoHz: 0.15, noiseLevel: 0.02},
	"somber":    {rootHz: 146.8, chordRatios: []float64{1, 1.189, 1.782}, pulseHz: 0, lfoHz: 0.05, noiseLevel: 0.05},
}

// moodDetune shifts the root slightly so different moods of one theme do not
// sound identical.
var moodDetune = map[string]float64{
	"calm":    1.0,
	"upbeat":  1.059,
	"dark":    0.944,
	"bright":  1.122,
	"driving": 1.0,
}

const proceduralPeak = 0.5

// proceduralSeed derives a stable rand seed from the clip identity, so the
// same theme/mood/seed always produces the same audio.
func proceduralSeed(theme, mood string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(theme)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToLower(mood)))
	h.Write([]byte{'|'})
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(seed >> (8 * i))
	}
	h.Write(b[:])
	return int64(h.Sum64())
}

// generateProcedural renders a layered sine pad of exactly the requested
// duration. It never touches the network or the filesystem.
func generateProcedural(theme, mood string, duration float64, seed int64) *audio.Buffer {
	preset, ok := themePresets[strings.ToLower(theme)]
	if !ok {
		preset = themePresets["neutral"]
	}
	root := preset.rootHz
	if detune, ok := moodDetune[strings.ToLower(mood)]; ok {
		root *= detune
	}

	rng := rand.New(rand.NewSource(proceduralSeed(theme, mood, seed)))

	// Per-layer phase offsets and slight detune keep the pad from sounding
	// like a bare oscillator bank.
	phases := make([]float64, len(preset.chordRatios))
	detunes := make([]float64, len(preset.chordRatios))
	for i := range preset.chordRatios {
		phases[i] = rng.Float64() * 2 * math.Pi
		detunes[i] = 1 + (rng.Float64()-0.5)*0.004
	}
	lfoPhase := rng.Float64() * 2 * math.Pi

	buf := audio.NewSilence(duration, audio.StandardSampleRate, audio.StandardChannels)
	frames := buf.Frames()
	layerGain := 1.0 / float64(len(preset.chordRatios))

	for f := 0; f < frames; f++ {
		t := float64(f) / audio.StandardSampleRate

		sample := 0.0
		for i, ratio := range preset.chordRatios {
			freq := root * ratio * detunes[i]
			sample += layerGain * math.Sin(2*math.Pi*freq*t+phases[i])
		}

		if preset.lfoHz > 0 {
			sample *= 0.8 + 0.2*math.Sin(2*math.Pi*preset.lfoHz*t+lfoPhase)
		}
		if preset.pulseHz > 0 {
			pulse := 0.5 + 0.5*math.Abs(math.Sin(math.Pi*preset.pulseHz*t))
			sample *= pulse
		}
		if preset.noiseLevel > 0 {
			sample += preset.noiseLevel * (rng.Float64()*2 - 1)
		}

		sample *= proceduralPeak
		buf.Samples[f*audio.StandardChannels] = sample
		buf.Samples[f*audio.StandardChannels+1] = sample
	}
	return buf
}
