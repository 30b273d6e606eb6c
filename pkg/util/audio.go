package util

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"soundbed/internal/storage"
	"soundbed/log"
)

// ConformAudio transcodes any input the media toolchain understands into the
// pipeline's standard format: 44.1kHz stereo 16-bit PCM WAV.
func ConformAudio(inputPath, destPath string) error {
	cmdArgs := []string{"-y", "-i", inputPath, "-vn", "-ar", "44100", "-ac", "2", "-c:a", "pcm_s16le", destPath}
	cmd := exec.Command(storage.FfmpegPath, cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("ConformAudio failed", zap.Error(err), zap.String("input", inputPath), zap.String("output", string(output)))
		return fmt.Errorf("conform audio %s: %w", inputPath, err)
	}
	return nil
}

// GetMediaDuration probes a media file's duration in seconds with ffprobe.
func GetMediaDuration(filePath string) (float64, error) {
	cmd := exec.Command(storage.FfprobePath,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probe duration %s: %w", filePath, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", string(output), err)
	}
	return duration, nil
}

// HasVideoStream reports whether the file carries at least one video stream.
// Cover-art streams in audio containers are still video streams to ffprobe,
// so callers treating mp3/m4a files should check the extension first.
func HasVideoStream(filePath string) (bool, error) {
	cmd := exec.Command(storage.FfprobePath,
		"-v", "quiet",
		"-select_streams", "v",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		filePath)
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("probe streams %s: %w", filePath, err)
	}
	return strings.Contains(string(output), "video"), nil
}
