package asset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundbed/internal/audio"
	"soundbed/pkg/errors"
)

func newTestLibrary(t *testing.T) (*LocalLibrary, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Ambient"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Ambient", "calm_pad.wav"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Ambient", "drone.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Ambient", "notes.txt"), []byte("x"), 0o644))
	return NewLocalLibrary(root), root
}

func TestLocalLibraryAvailable(t *testing.T) {
	lib, _ := newTestLibrary(t)
	assert.True(t, lib.Available())

	assert.False(t, NewLocalLibrary("").Available())
	assert.False(t, NewLocalLibrary("/does/not/exist").Available())
}

func TestLocalLibrarySearchPrefersMoodMatch(t *testing.T) {
	lib, _ := newTestLibrary(t)

	refs, err := lib.Search(context.Background(), "ambient", "calm")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Contains(t, refs[0].URI, "calm_pad.wav")
}

func TestLocalLibrarySearchFallsBackToAnyClip(t *testing.T) {
	lib, _ := newTestLibrary(t)

	refs, err := lib.Search(context.Background(), "AMBIENT", "brooding")
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestLocalLibrarySearchUnknownTheme(t *testing.T) {
	lib, _ := newTestLibrary(t)

	_, err := lib.Search(context.Background(), "jazz", "calm")
	require.Error(t, err)
	assert.Equal(t, errors.CodeAssetLookupFailed, errors.GetCode(err))
}

func TestLocalLibraryFetch(t *testing.T) {
	lib, _ := newTestLibrary(t)

	refs, err := lib.Search(context.Background(), "ambient", "calm")
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, lib.Fetch(context.Background(), refs[0], dest))

	_, err = os.Stat(dest)
	assert.NoError(t, err)
}

func TestLocalLibraryProbesWavDurations(t *testing.T) {
	lib, root := newTestLibrary(t)

	clip := audio.NewSilence(3, audio.StandardSampleRate, audio.StandardChannels)
	require.NoError(t, audio.WriteWAV(filepath.Join(root, "Ambient", "pad_long.wav"), clip))

	refs, err := lib.Search(context.Background(), "ambient", "brooding")
	require.NoError(t, err)

	byKey := map[string]float64{}
	for _, ref := range refs {
		byKey[filepath.Base(ref.URI)] = ref.Duration
	}
	assert.InDelta(t, 3.0, byKey["pad_long.wav"], 0.01)
	// Unreadable headers and non-WAV files report zero.
	assert.Zero(t, byKey["calm_pad.wav"])
	assert.Zero(t, byKey["drone.mp3"])
}

func TestLocalLibraryStore(t *testing.T) {
	lib, _ := newTestLibrary(t)

	src := filepath.Join(t.TempDir(), "upload.wav")
	require.NoError(t, audio.WriteWAV(src, audio.NewSilence(1, audio.StandardSampleRate, audio.StandardChannels)))

	key, err := lib.Store(context.Background(), "Ambient", "new pad.wav", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Ambient", "new_pad.wav"), key)

	refs, err := lib.Search(context.Background(), "ambient", "pad")
	require.NoError(t, err)
	found := false
	for _, ref := range refs {
		if filepath.Base(ref.URI) == "new_pad.wav" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLocalLibraryStoreCreatesThemeDir(t *testing.T) {
	lib, root := newTestLibrary(t)

	src := filepath.Join(t.TempDir(), "hit.wav")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	key, err := lib.Store(context.Background(), "Cinematic", "hit.wav", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("cinematic", "hit.wav"), key)

	_, err = os.Stat(filepath.Join(root, "cinematic", "hit.wav"))
	assert.NoError(t, err)
}

func TestNewLibraryProviderSwitch(t *testing.T) {
	assert.False(t, NewLibrary(Config{Provider: "none"}).Available())
	assert.False(t, NewLibrary(Config{Provider: ""}).Available())
	assert.IsType(t, &LocalLibrary{}, NewLibrary(Config{Provider: "local", LocalDir: t.TempDir()}))
	assert.IsType(t, &OssLibrary{}, NewLibrary(Config{Provider: "oss", Bucket: "b"}))
}
