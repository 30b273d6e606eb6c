package asset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"soundbed/internal/audio"
	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/errors"
	"soundbed/pkg/util"
)

// LocalLibrary serves clips from a directory laid out as <root>/<theme>/*.
// Mood is matched against the file name when possible, with any clip of the
// theme accepted as a fallback. WAV clip durations are probed once per file
// and cached so candidate ranking can prefer clips long enough to cover a
// segment without looping.
type LocalLibrary struct {
	root string

	mu        sync.Mutex
	durations map[string]float64
}

func NewLocalLibrary(root string) *LocalLibrary {
	return &LocalLibrary{root: root, durations: map[string]float64{}}
}

func (l *LocalLibrary) Available() bool {
	if l.root == "" {
		return false
	}
	info, err := os.Stat(l.root)
	return err == nil && info.IsDir()
}

func (l *LocalLibrary) Search(ctx context.Context, theme, mood string) ([]types.AssetRef, error) {
	themeDir, err := l.resolveThemeDir(theme)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(themeDir)
	if err != nil {
		return nil, errors.Wrap(errors.CodeAssetLookupFailed, "read theme directory failed", err)
	}

	var refs []types.AssetRef
	for _, entry := range entries {
		if entry.IsDir() || !util.IsAudioFile(entry.Name()) {
			continue
		}
		uri := filepath.Join(themeDir, entry.Name())
		refs = append(refs, types.AssetRef{
			Key:      filepath.Join(filepath.Base(themeDir), entry.Name()),
			Theme:    theme,
			Mood:     mood,
			Duration: l.clipDuration(uri),
			URI:      uri,
		})
	}
	if len(refs) == 0 {
		return nil, errors.New(errors.CodeAssetLookupFailed, "no clips found for theme "+theme)
	}

	// Prefer clips whose name mentions the mood.
	matched := lo.Filter(refs, func(r types.AssetRef, _ int) bool {
		return strings.Contains(strings.ToLower(filepath.Base(r.URI)), strings.ToLower(mood))
	})
	if len(matched) > 0 {
		return matched, nil
	}
	return refs, nil
}

func (l *LocalLibrary) Fetch(ctx context.Context, ref types.AssetRef, destPath string) error {
	if err := util.CopyFile(ref.URI, destPath); err != nil {
		return errors.Wrap(errors.CodeAssetFetchFailed, "copy library clip failed", err)
	}
	return nil
}

// Store files a new clip under the theme folder, creating the folder for a
// theme the library has not seen before.
func (l *LocalLibrary) Store(ctx context.Context, theme, name, localPath string) (string, error) {
	themeDir, err := l.resolveThemeDir(theme)
	if err != nil {
		themeDir = filepath.Join(l.root, strings.ToLower(theme))
	}
	name = util.SanitizePathName(filepath.Base(name))
	if err := util.CopyFile(localPath, filepath.Join(themeDir, name)); err != nil {
		return "", errors.Wrap(errors.CodeFileWriteError, "store library clip failed", err)
	}
	return filepath.Join(filepath.Base(themeDir), name), nil
}

// clipDuration probes a WAV header once and caches the result. Other formats
// report zero and are ranked by the seeded fallback instead.
func (l *LocalLibrary) clipDuration(path string) float64 {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if d, ok := l.durations[path]; ok {
		return d
	}
	d, err := audio.WavDuration(path)
	if err != nil {
		d = 0
	}
	l.durations[path] = d
	return d
}

// resolveThemeDir matches the theme against subdirectory names case
// insensitively so "Ambient" and "ambient" share a folder.
func (l *LocalLibrary) resolveThemeDir(theme string) (string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return "", errors.Wrap(errors.CodeAssetLookupFailed, "read library root failed", err)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.EqualFold(entry.Name(), theme) {
			return filepath.Join(l.root, entry.Name()), nil
		}
	}
	log.GetLogger().Debug("no library folder for theme", zap.String("theme", theme))
	return "", errors.New(errors.CodeAssetLookupFailed, "no library folder for theme "+theme)
}
