package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"soundbed/config"
	"soundbed/internal/audio"
	"soundbed/internal/mixer"
	"soundbed/internal/segment"
	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/errors"
	"soundbed/pkg/retry"
	"soundbed/pkg/util"
)

// PipelineResult summarizes one completed run.
type PipelineResult struct {
	Segments   []types.Segment
	Sources    []types.ClipSource
	MixReport  *mixer.Report
	OutputPath string
}

// ProgressFunc receives coarse progress updates while a run executes.
type ProgressFunc func(pct uint8, msg string)

// ProcessMedia runs the full pipeline for one input: stage media, conform
// audio, transcribe, analyze themes, synthesize and compose BGM, mix, and mux
// the final output file. A failed run leaves no partial files behind: the
// whole task directory is removed on any error return.
func (s *Service) ProcessMedia(ctx context.Context, taskId, mediaSrc string, opts types.RunOptions, progress ProgressFunc) (result *PipelineResult, err error) {
	if progress == nil {
		progress = func(uint8, string) {}
	}
	taskDir := filepath.Join(config.Conf.App.TempDir, taskId)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.CodeFileWriteError, "create task directory failed", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.RemoveAll(taskDir); rmErr != nil {
			log.GetLogger().Warn("remove task directory failed",
				zap.String("taskId", taskId), zap.Error(rmErr))
		}
	}()

	progress(5, "staging input media")
	localPath, err := fetchMedia(ctx, mediaSrc, filepath.Join(taskDir, "input"+filepath.Ext(mediaSrc)))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(localPath); err != nil {
		return nil, errors.Wrap(errors.CodeMediaNotFound, "input media not found", err)
	}

	hasVideo := false
	switch {
	case util.IsVideoFile(localPath):
		hasVideo, err = util.HasVideoStream(localPath)
		if err != nil {
			return nil, err
		}
	case util.IsAudioFile(localPath):
	default:
		return nil, errors.New(errors.CodeUnsupportedMedia, "unsupported media type: "+filepath.Ext(localPath))
	}

	progress(15, "conforming audio")
	conformedPath := filepath.Join(taskDir, types.ConformedAudioFileName)
	if err := util.ConformAudio(localPath, conformedPath); err != nil {
		return nil, err
	}
	duration, err := util.GetMediaDuration(conformedPath)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, errors.New(errors.CodeUnsupportedMedia, "input media has no audible duration")
	}

	progress(30, "transcribing")
	var transcript []types.TranscriptSegment
	err = retry.Default().Do(ctx, func(ctx context.Context) error {
		var trErr error
		transcript, trErr = s.Transcriber.Transcribe(ctx, conformedPath)
		return trErr
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeTranscribeFailed, "transcription failed", err)
	}

	progress(45, "analyzing themes")
	ranges, err := s.analyzeThemes(ctx, transcript, duration)
	if err != nil {
		return nil, err
	}
	segments, err := segment.Normalize(ranges, duration, segment.DefaultOptions())
	if err != nil {
		return nil, err
	}
	log.GetLogger().Info("segment timeline ready",
		zap.String("taskId", taskId), zap.Int("segments", len(segments)))

	progress(60, "synthesizing background music")
	bgm, sources, err := s.buildBgmTrack(ctx, segments)
	if err != nil {
		return nil, err
	}

	progress(75, "mixing")
	original, err := audio.ReadWAV(conformedPath)
	if err != nil {
		return nil, err
	}
	mix, report, err := mixer.NewMixer(resolveBgmLevel(opts)).Mix(original, bgm)
	if err != nil {
		return nil, err
	}
	mixPath := filepath.Join(taskDir, types.MixResultFileName)
	if err := audio.WriteWAV(mixPath, mix); err != nil {
		return nil, errors.Wrap(errors.CodeFileWriteError, "write mixed audio failed", err)
	}

	progress(90, "assembling output")
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(taskDir, types.OutputVideoFileName)
	}
	sourceVideo := ""
	if hasVideo {
		sourceVideo = localPath
	}
	asm := s.Assembler
	if opts.Width > 0 && opts.Height > 0 {
		asm = asm.WithResolution(fmt.Sprintf("%dx%d", opts.Width, opts.Height))
	}
	if err := asm.Assemble(ctx, mixPath, sourceVideo, outputPath); err != nil {
		return nil, err
	}

	// Intermediates are only useful while the run is alive.
	os.Remove(conformedPath)
	os.Remove(mixPath)
	if localPath != mediaSrc {
		os.Remove(localPath)
	}

	progress(100, "done")
	return &PipelineResult{
		Segments:   segments,
		Sources:    sources,
		MixReport:  report,
		OutputPath: outputPath,
	}, nil
}

// resolveBgmLevel falls back to the configured default only when the caller
// left the level unset; an explicit zero mutes the BGM entirely.
func resolveBgmLevel(opts types.RunOptions) float64 {
	if opts.BgmLevel != nil {
		return *opts.BgmLevel
	}
	return config.Conf.Bgm.DefaultLevel
}

// analyzeThemes asks the LLM to partition the transcript into theme ranges.
// An empty transcript (instrumental input) skips the call entirely and lets
// the segment store produce a single default segment.
func (s *Service) analyzeThemes(ctx context.Context, transcript []types.TranscriptSegment, duration float64) ([]types.ThemeRange, error) {
	if len(transcript) == 0 {
		log.GetLogger().Info("empty transcript, skipping theme analysis")
		return nil, nil
	}

	var lines strings.Builder
	for _, seg := range transcript {
		fmt.Fprintf(&lines, "[%.1f - %.1f] %s\n", seg.Start, seg.End, strings.TrimSpace(seg.Text))
	}
	prompt := fmt.Sprintf(types.ThemeAnalysisPrompt,
		strings.Join(config.Conf.Bgm.Themes, ", "), lines.String())

	var reply string
	err := retry.Default().Do(ctx, func(ctx context.Context) error {
		var chatErr error
		reply, chatErr = s.ChatCompleter.ChatCompletion(ctx, prompt)
		return chatErr
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeAnalysisUnavailable, "theme analysis request failed", err)
	}

	var ranges []types.ThemeRange
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(reply)), &ranges); err != nil {
		log.GetLogger().Error("theme analysis returned unparseable JSON",
			zap.String("reply", reply), zap.Error(err))
		return nil, errors.Wrap(errors.CodeAnalysisUnavailable, "theme analysis returned unparseable JSON", err)
	}
	return ranges, nil
}

// buildBgmTrack synthesizes one clip per segment in parallel and composes
// them into a single continuous track.
func (s *Service) buildBgmTrack(ctx context.Context, segments []types.Segment) (*audio.Buffer, []types.ClipSource, error) {
	clips := make([]*audio.Buffer, len(segments))
	sources := make([]types.ClipSource, len(segments))

	limit := config.Conf.App.TaskLimit
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			result, err := s.Synthesizer.Synthesize(gctx, seg.Theme, seg.Mood, seg.Duration())
			if err != nil {
				return err
			}
			clips[i] = result.Clip
			sources[i] = result.Source
			if result.Source == types.ClipSourceLibrary {
				log.GetLogger().Debug("segment clip from library",
					zap.Int("segment", i), zap.String("asset", result.AssetKey))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	track, err := s.Composer.Compose(segments, clips)
	if err != nil {
		return nil, nil, err
	}
	return track, sources, nil
}

// marshalSegments serializes the timeline for persistence with the task row.
func marshalSegments(segments []types.Segment, sources []types.ClipSource) string {
	type segmentRecord struct {
		types.Segment
		Source types.ClipSource `json:"source"`
	}
	records := make([]segmentRecord, len(segments))
	for i, seg := range segments {
		records[i] = segmentRecord{Segment: seg, Source: sources[i]}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return ""
	}
	return string(data)
}
