package util

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const randCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandStringWithUpperLowerNum returns a random alphanumeric string of length n.
func GenerateRandStringWithUpperLowerNum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = randCharset[rand.Intn(len(randCharset))]
	}
	return string(b)
}

var unsafePathChars = regexp.MustCompile(`[^\w\-.]`)

// SanitizePathName strips characters that are unsafe in file names or that
// confuse ffmpeg's argument parsing.
func SanitizePathName(name string) string {
	return unsafePathChars.ReplaceAllString(name, "_")
}

// CopyFile copies src to dst, creating parent directories as needed.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".m4a", ".aac", ".flac", ".ogg", ".wma":
		return true
	}
	return false
}

// IsVideoFile reports whether the path has a recognized video extension.
func IsVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".avi", ".mov", ".mkv", ".webm", ".flv", ".wmv", ".m4v":
		return true
	}
	return false
}
