package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/log"
	"soundbed/pkg/errors"
)

// fetchMedia stages the input media locally. Remote http(s) sources are
// downloaded into the task directory; local paths are used as-is.
func fetchMedia(ctx context.Context, mediaSrc, destPath string) (string, error) {
	if !strings.HasPrefix(mediaSrc, "http://") && !strings.HasPrefix(mediaSrc, "https://") {
		return mediaSrc, nil
	}

	client := resty.New().SetTimeout(10 * time.Minute)
	if config.Conf.App.ParsedProxy != nil {
		client.SetProxy(config.Conf.App.Proxy)
	}

	log.GetLogger().Info("downloading input media", zap.String("url", mediaSrc))
	resp, err := client.R().
		SetContext(ctx).
		SetOutput(destPath).
		Get(mediaSrc)
	if err != nil {
		return "", errors.Wrap(errors.CodeMediaDownload, "download input media failed", err)
	}
	if resp.StatusCode() >= 400 {
		return "", errors.New(errors.CodeMediaDownload,
			fmt.Sprintf("download input media failed with status %d", resp.StatusCode()))
	}
	return destPath, nil
}
