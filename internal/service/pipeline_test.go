package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"soundbed/config"
	"soundbed/internal/audio"
	"soundbed/internal/mixer"
	"soundbed/internal/mocks"
	"soundbed/internal/segment"
	"soundbed/internal/synth"
	"soundbed/internal/timeline"
	"soundbed/internal/types"
	"soundbed/pkg/errors"
	"soundbed/pkg/retry"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	old := config.Conf
	t.Cleanup(func() { config.Conf = old })

	config.Conf = config.Config{}
	config.Conf.App.TaskLimit = 2
	config.Conf.App.Seed = 1
	config.Conf.Bgm.DefaultLevel = 0.3
	config.Conf.Bgm.Crossfade = 2.0
	config.Conf.Bgm.Themes = []string{"neutral", "ambient", "energetic", "tense"}
}

func newTestService(t *testing.T, chat types.ChatCompleter) *Service {
	t.Helper()
	synthesizer := synth.NewSynthesizer(nil, t.TempDir(), 1)
	synthesizer.SetRetryPolicy(retry.Policy{MaxAttempts: 1})
	return &Service{
		ChatCompleter: chat,
		Synthesizer:   synthesizer,
		Composer:      timeline.NewComposer(2),
	}
}

func TestAnalyzeThemesParsesFencedJson(t *testing.T) {
	setupTestConfig(t)

	chat := &mocks.MockChatCompleter{}
	chat.On("ChatCompletion", mock.Anything, mock.Anything).Return("Here you go:\n```json\n"+
		`[{"start":0,"end":30,"theme":"ambient","mood":"calm","description":"intro"},`+
		`{"start":30,"end":90,"theme":"energetic","mood":"upbeat"}]`+"\n```", nil)

	svc := newTestService(t, chat)
	transcript := []types.TranscriptSegment{
		{Start: 0, End: 10, Text: "welcome everyone"},
		{Start: 40, End: 50, Text: "now the exciting part"},
	}

	ranges, err := svc.analyzeThemes(context.Background(), transcript, 90)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, "ambient", ranges[0].Theme)
	assert.Equal(t, "upbeat", ranges[1].Mood)
}

func TestAnalyzeThemesEmptyTranscriptSkipsCall(t *testing.T) {
	setupTestConfig(t)

	chat := &mocks.MockChatCompleter{}
	svc := newTestService(t, chat)

	ranges, err := svc.analyzeThemes(context.Background(), nil, 60)
	require.NoError(t, err)
	assert.Nil(t, ranges)
	chat.AssertNotCalled(t, "ChatCompletion", mock.Anything, mock.Anything)
}

func TestAnalyzeThemesUnparseableReply(t *testing.T) {
	setupTestConfig(t)

	chat := &mocks.MockChatCompleter{}
	chat.On("ChatCompletion", mock.Anything, mock.Anything).Return("I cannot help with that.", nil)

	svc := newTestService(t, chat)
	transcript := []types.TranscriptSegment{{Start: 0, End: 5, Text: "hello"}}

	_, err := svc.analyzeThemes(context.Background(), transcript, 60)
	require.Error(t, err)
	assert.Equal(t, errors.CodeAnalysisUnavailable, errors.GetCode(err))
}

func TestBuildBgmTrackCoversTimeline(t *testing.T) {
	setupTestConfig(t)
	svc := newTestService(t, nil)

	segments := []types.Segment{
		{Start: 0, End: 30, Theme: "ambient", Mood: "calm"},
		{Start: 30, End: 60, Theme: "energetic", Mood: "upbeat"},
		{Start: 60, End: 90, Theme: "ambient", Mood: "calm"},
	}

	track, sources, err := svc.buildBgmTrack(context.Background(), segments)
	require.NoError(t, err)
	assert.Equal(t, audio.FramesFor(90, audio.StandardSampleRate), track.Frames())
	require.Len(t, sources, 3)
	for _, src := range sources {
		assert.Equal(t, types.ClipSourceSynthesized, src)
	}

	// Crossfade regions around 30s and 60s stay audible.
	for _, boundary := range []float64{30, 60} {
		start := audio.FramesFor(boundary-0.5, audio.StandardSampleRate)
		end := audio.FramesFor(boundary+0.5, audio.StandardSampleRate)
		sum := 0.0
		for f := start; f < end; f++ {
			s := track.Samples[f*audio.StandardChannels]
			sum += s * s
		}
		rms := math.Sqrt(sum / float64(end-start))
		assert.Greater(t, rms, 0.01, "silence around boundary %.0fs", boundary)
	}
}

func TestBuildBgmTrackSucceedsWithLibraryDown(t *testing.T) {
	setupTestConfig(t)

	lib := &mocks.MockAssetLibrary{}
	lib.On("Available").Return(true)
	lib.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.ErrAssetLookupFailed)

	synthesizer := synth.NewSynthesizer(lib, t.TempDir(), 1)
	synthesizer.SetRetryPolicy(retry.Policy{MaxAttempts: 1})
	svc := &Service{
		AssetLibrary: lib,
		Synthesizer:  synthesizer,
		Composer:     timeline.NewComposer(2),
	}

	segments := []types.Segment{
		{Start: 0, End: 20, Theme: "ambient", Mood: "calm"},
		{Start: 20, End: 40, Theme: "tense", Mood: "dark"},
	}
	track, sources, err := svc.buildBgmTrack(context.Background(), segments)
	require.NoError(t, err)
	assert.Equal(t, audio.FramesFor(40, audio.StandardSampleRate), track.Frames())
	for _, src := range sources {
		assert.Equal(t, types.ClipSourceSynthesized, src)
	}
}

func TestEndToEndMixLevel(t *testing.T) {
	setupTestConfig(t)
	svc := newTestService(t, nil)

	ranges := []types.ThemeRange{
		{Start: 0, End: 30, Theme: "ambient", Mood: "calm"},
		{Start: 30, End: 60, Theme: "energetic", Mood: "upbeat"},
		{Start: 60, End: 90, Theme: "ambient", Mood: "calm"},
	}
	segments, err := segment.Normalize(ranges, 90, segment.DefaultOptions())
	require.NoError(t, err)

	track, _, err := svc.buildBgmTrack(context.Background(), segments)
	require.NoError(t, err)

	original := audio.NewSilence(90, audio.StandardSampleRate, audio.StandardChannels)
	mix, report, err := mixer.NewMixer(0.3).Mix(original, track)
	require.NoError(t, err)
	require.False(t, report.ClippingGuard)

	assert.Equal(t, audio.FramesFor(90, audio.StandardSampleRate), mix.Frames())
	// BGM contribution sits at roughly level x the track's own loudness;
	// the short edge fades shave only a little energy off.
	assert.InEpsilon(t, 0.3*track.RMS(), mix.RMS(), 0.05)
}

func TestMarshalSegments(t *testing.T) {
	segments := []types.Segment{{Start: 0, End: 10, Theme: "ambient", Mood: "calm"}}
	sources := []types.ClipSource{types.ClipSourceLibrary}

	got := marshalSegments(segments, sources)
	assert.Contains(t, got, `"theme":"ambient"`)
	assert.Contains(t, got, `"source":"library"`)
}

func TestParseResolution(t *testing.T) {
	w, h := parseResolution("1920x1080")
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	w, h = parseResolution("garbage")
	assert.Zero(t, w)
	assert.Zero(t, h)
}
