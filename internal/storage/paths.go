package storage

import "os/exec"

// Resolved media toolchain binaries. Defaults assume PATH lookup; LocateBinaries
// pins absolute paths at startup so task goroutines never race on PATH changes.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)

// LocateBinaries resolves ffmpeg/ffprobe from PATH. Returns the first lookup
// error; the pipeline cannot run without both.
func LocateBinaries() error {
	ffmpeg, err := exec.LookPath(FfmpegPath)
	if err != nil {
		return err
	}
	ffprobe, err := exec.LookPath(FfprobePath)
	if err != nil {
		return err
	}
	FfmpegPath = ffmpeg
	FfprobePath = ffprobe
	return nil
}
