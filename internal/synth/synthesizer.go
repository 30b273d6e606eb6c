// Package synth produces one BGM clip per segment, preferring curated library
// assets and falling back to deterministic procedural generation when the
// library cannot serve.
package synth

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"soundbed/internal/audio"
	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/errors"
	"soundbed/pkg/retry"
	"soundbed/pkg/util"
)

// loopFadeSeconds is the crossfade applied at loop seams when a library clip
// is shorter than its segment.
const loopFadeSeconds = 1.0

type Result struct {
	Clip     *audio.Buffer
	Source   types.ClipSource
	AssetKey string
}

type Synthesizer struct {
	library types.AssetLibrary
	workDir string
	seed    int64
	policy  retry.Policy

	// Swap points for tests that run without ffmpeg on disk.
	conform func(inputPath, destPath string) error
	decode  func(path string) (*audio.Buffer, error)
}

// SetRetryPolicy replaces the library retry policy, mainly so tests can run
// without backoff sleeps.
func (s *Synthesizer) SetRetryPolicy(policy retry.Policy) {
	s.policy = policy
}

func NewSynthesizer(library types.AssetLibrary, workDir string, seed int64) *Synthesizer {
	return &Synthesizer{
		library: library,
		workDir: workDir,
		seed:    seed,
		policy:  retry.Default(),
		conform: util.ConformAudio,
		decode:  audio.ReadWAV,
	}
}

// Synthesize returns a clip of exactly the requested duration. Library
// failures are absorbed: the procedural generator always produces something
// usable, so this only errors on invalid input.
func (s *Synthesizer) Synthesize(ctx context.Context, theme, mood string, duration float64) (*Result, error) {
	if duration <= 0 {
		return nil, errors.New(errors.CodeInvalidSegmentData, "clip duration must be positive")
	}

	if s.library != nil && s.library.Available() {
		result, err := s.fromLibrary(ctx, theme, mood, duration)
		if err == nil {
			return result, nil
		}
		log.GetLogger().Warn("library clip unavailable, falling back to procedural generation",
			zap.String("theme", theme), zap.String("mood", mood), zap.Error(err))
	}

	clip := generateProcedural(theme, mood, duration, s.seed)
	return &Result{Clip: clip, Source: types.ClipSourceSynthesized}, nil
}

// pickAsset prefers the shortest candidate that still covers the requested
// duration, then the longest known one, so clips loop as little as possible.
// Without probed durations the pick is seeded-random: deterministic for a
// given theme/mood/seed across reruns.
func pickAsset(refs []types.AssetRef, duration float64, rng *rand.Rand) types.AssetRef {
	best := -1
	for i, r := range refs {
		if r.Duration >= duration && (best < 0 || r.Duration < refs[best].Duration) {
			best = i
		}
	}
	if best < 0 {
		for i, r := range refs {
			if r.Duration > 0 && (best < 0 || r.Duration > refs[best].Duration) {
				best = i
			}
		}
	}
	if best < 0 {
		best = rng.Intn(len(refs))
	}
	return refs[best]
}

func (s *Synthesizer) fromLibrary(ctx context.Context, theme, mood string, duration float64) (*Result, error) {
	var refs []types.AssetRef
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var searchErr error
		refs, searchErr = s.library.Search(ctx, theme, mood)
		return searchErr
	})
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, errors.New(errors.CodeAssetLookupFailed, "library returned no clips for theme "+theme)
	}

	rng := rand.New(rand.NewSource(proceduralSeed(theme, mood, s.seed)))
	ref := pickAsset(refs, duration, rng)

	rawPath := filepath.Join(s.workDir, fmt.Sprintf("asset_%s_raw", util.SanitizePathName(filepath.Base(ref.Key))))
	conformedPath := rawPath + ".wav"
	defer os.Remove(rawPath)
	defer os.Remove(conformedPath)

	if err := s.policy.Do(ctx, func(ctx context.Context) error {
		return s.library.Fetch(ctx, ref, rawPath)
	}); err != nil {
		return nil, err
	}
	if err := s.conform(rawPath, conformedPath); err != nil {
		return nil, errors.Wrap(errors.CodeAssetFetchFailed, "conform library clip failed", err)
	}

	clip, err := s.decode(conformedPath)
	if err != nil {
		return nil, err
	}

	clip = clip.LoopTo(duration, loopFadeSeconds)
	clip = clip.FitFrames(audio.FramesFor(duration, clip.SampleRate))
	return &Result{Clip: clip, Source: types.ClipSourceLibrary, AssetKey: ref.Key}, nil
}
