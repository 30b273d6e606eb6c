package asset

import (
	"context"
	"path"
	"strings"

	"soundbed/internal/types"
	"soundbed/pkg/aliyun"
	"soundbed/pkg/errors"
	"soundbed/pkg/util"
)

// OssLibrary serves clips from an OSS bucket keyed as <prefix>/<theme>/<name>.
type OssLibrary struct {
	client *aliyun.OssClient
	prefix string
}

func NewOssLibrary(cfg Config) *OssLibrary {
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "BGM"
	}
	return &OssLibrary{
		client: aliyun.NewOssClient(cfg.AccessKeyId, cfg.AccessKeySecret, cfg.Bucket, cfg.Region),
		prefix: prefix,
	}
}

func (l *OssLibrary) Available() bool {
	return l.client != nil && l.client.Bucket != ""
}

func (l *OssLibrary) Search(ctx context.Context, theme, mood string) ([]types.AssetRef, error) {
	keyPrefix := l.prefix + "/" + strings.ToLower(theme) + "/"
	objects, err := l.client.ListPrefix(ctx, keyPrefix)
	if err != nil {
		return nil, errors.Wrap(errors.CodeAssetLookupFailed, "list bucket objects failed", err)
	}

	var refs []types.AssetRef
	for _, obj := range objects {
		if obj.Size == 0 || !util.IsAudioFile(obj.Key) {
			continue
		}
		refs = append(refs, types.AssetRef{
			Key:   obj.Key,
			Theme: theme,
			Mood:  mood,
			URI:   "oss://" + l.client.Bucket + "/" + obj.Key,
		})
	}
	if len(refs) == 0 {
		return nil, errors.New(errors.CodeAssetLookupFailed, "no clips found for theme "+theme)
	}

	var matched []types.AssetRef
	for _, r := range refs {
		if strings.Contains(strings.ToLower(path.Base(r.Key)), strings.ToLower(mood)) {
			matched = append(matched, r)
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}
	return refs, nil
}

func (l *OssLibrary) Fetch(ctx context.Context, ref types.AssetRef, destPath string) error {
	if err := l.client.DownloadFile(ctx, ref.Key, destPath); err != nil {
		return errors.Wrap(errors.CodeAssetFetchFailed, "download clip from bucket failed", err)
	}
	return nil
}

// Store uploads a new clip under the theme prefix.
func (l *OssLibrary) Store(ctx context.Context, theme, name, localPath string) (string, error) {
	key := l.prefix + "/" + strings.ToLower(theme) + "/" + util.SanitizePathName(path.Base(name))
	if err := l.client.UploadFile(ctx, key, localPath); err != nil {
		return "", errors.Wrap(errors.CodeFileWriteError, "upload clip to bucket failed", err)
	}
	return key, nil
}
