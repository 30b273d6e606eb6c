// Package asset resolves theme/mood queries against a curated BGM library,
// backed either by a local directory or an OSS bucket. The synthesizer falls
// back to procedural generation when lookups fail, so providers here report
// errors rather than guessing.
package asset

import (
	"context"

	"soundbed/internal/types"
)

// Config selects and parameterizes a library provider. Provider is one of
// "local", "oss" or "none".
type Config struct {
	Provider string
	LocalDir string

	AccessKeyId     string
	AccessKeySecret string
	Bucket          string
	Region          string
	Prefix          string
}

// NewLibrary builds the provider named by cfg. An unknown or "none" provider
// yields a library that is never available, which pushes every segment to the
// procedural fallback.
func NewLibrary(cfg Config) types.AssetLibrary {
	switch cfg.Provider {
	case "local":
		return NewLocalLibrary(cfg.LocalDir)
	case "oss":
		return NewOssLibrary(cfg)
	default:
		return noneLibrary{}
	}
}

type noneLibrary struct{}

func (noneLibrary) Available() bool { return false }

func (noneLibrary) Search(context.Context, string, string) ([]types.AssetRef, error) {
	return nil, nil
}

func (noneLibrary) Fetch(context.Context, types.AssetRef, string) error {
	return nil
}
