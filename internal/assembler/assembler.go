// Package assembler muxes the mixed audio back into a deliverable media file
// with ffmpeg.
package assembler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"soundbed/internal/storage"
	"soundbed/log"
	"soundbed/pkg/errors"
)

type Assembler struct {
	// Resolution is used for the generated placeholder visual on audio-only
	// inputs, e.g. "1280x720".
	Resolution string
}

func NewAssembler(resolution string) *Assembler {
	if resolution == "" {
		resolution = "1280x720"
	}
	return &Assembler{Resolution: resolution}
}

// WithResolution returns an assembler targeting a different placeholder
// resolution. The receiver is unchanged.
func (a *Assembler) WithResolution(resolution string) *Assembler {
	if resolution == "" {
		return a
	}
	return &Assembler{Resolution: resolution}
}

// Assemble writes the final output file. With a source video the original
// frames are kept and only the audio track is replaced; mismatched durations
// are reconciled by padding the shorter stream, never by cutting content.
// Without a video the mix is rendered under a generated color frame.
func (a *Assembler) Assemble(ctx context.Context, mixPath, sourceVideoPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeMediaAssemblyError, "create output directory failed", err)
	}

	var cmd *exec.Cmd
	if sourceVideoPath != "" {
		cmd = exec.CommandContext(ctx, storage.FfmpegPath,
			"-y",
			"-i", sourceVideoPath,
			"-i", mixPath,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", "192k",
			"-af", "apad",
			"-shortest",
			outputPath,
		)
	} else {
		cmd = exec.CommandContext(ctx, storage.FfmpegPath,
			"-y",
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=c=0x202030:s=%s:r=25", a.Resolution),
			"-i", mixPath,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
			outputPath,
		)
	}

	log.GetLogger().Info("assembling output media",
		zap.String("output", outputPath), zap.Bool("hasVideo", sourceVideoPath != ""))
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outputPath)
		log.GetLogger().Error("ffmpeg mux failed", zap.String("out", string(out)), zap.Error(err))
		return errors.Wrap(errors.CodeMediaAssemblyError, "mux output media failed", err)
	}
	return nil
}
