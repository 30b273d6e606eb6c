// Package mixer ducks the composed BGM track under the original program
// audio and guards the result against clipping.
package mixer

import (
	"fmt"

	"go.uber.org/zap"

	"soundbed/internal/audio"
	"soundbed/log"
	"soundbed/pkg/errors"
)

// edgeFadeSeconds is the fade applied to the BGM track's outer edges so the
// output never starts or ends with music at full level mid-phrase.
const edgeFadeSeconds = 1.5

// Report describes what the mix did to the signal. ScaledBy is 1.0 unless the
// clipping guard fired.
type Report struct {
	ClippingGuard bool
	ScaledBy      float64
	OriginalPeak  float64
	MixPeak       float64
	BgmRMS        float64
}

type Mixer struct {
	// BgmLevel is the linear gain applied to the BGM track before summing.
	BgmLevel float64
}

func NewMixer(bgmLevel float64) *Mixer {
	return &Mixer{BgmLevel: bgmLevel}
}

// Mix sums the BGM under the original audio at the configured level. The BGM
// track is padded or trimmed to the original's length first. When the summed
// peak exceeds full scale, the whole mix is rescaled uniformly; individual
// samples are never clamped, so relative dynamics survive.
func (m *Mixer) Mix(original, bgm *audio.Buffer) (*audio.Buffer, *Report, error) {
	if original.SampleRate != bgm.SampleRate || original.Channels != bgm.Channels {
		return nil, nil, errors.New(errors.CodeMixFailed,
			fmt.Sprintf("format mismatch: original %dHz/%dch, bgm %dHz/%dch",
				original.SampleRate, original.Channels, bgm.SampleRate, bgm.Channels))
	}
	if m.BgmLevel < 0 || m.BgmLevel > 1 {
		return nil, nil, errors.New(errors.CodeMixFailed,
			fmt.Sprintf("bgm level %.2f outside [0, 1]", m.BgmLevel))
	}

	leveled := bgm.FitFrames(original.Frames())
	if leveled == bgm {
		leveled = bgm.Clone()
	}
	leveled.Gain(m.BgmLevel)
	leveled.FadeIn(edgeFadeSeconds)
	leveled.FadeOut(edgeFadeSeconds)

	report := &Report{
		ScaledBy:     1.0,
		OriginalPeak: original.Peak(),
		BgmRMS:       leveled.RMS(),
	}

	mix := original.Clone()
	mix.OverlayAt(leveled, 0)

	peak := mix.Peak()
	if peak > 1.0 {
		scale := 1.0 / peak
		mix.Gain(scale)
		report.ClippingGuard = true
		report.ScaledBy = scale
		log.GetLogger().Warn("clipping guard engaged, rescaling mix",
			zap.Float64("peak", peak), zap.Float64("scale", scale))
		peak = mix.Peak()
	}
	report.MixPeak = peak

	return mix, report, nil
}
