package openai

import (
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"

	"soundbed/log"
)

type Client struct {
	client *openai.Client
}

func NewClient(baseUrl, apiKey, proxyAddr string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	transport := &http.Transport{}
	if proxyAddr != "" {
		proxyUrl, err := url.Parse(proxyAddr)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyUrl)
		} else {
			log.GetLogger().Warn("invalid proxy address, ignoring: " + proxyAddr)
		}
	}

	// No timeout: transcription of long media can exceed any sane fixed
	// deadline, callers cancel via context instead.
	cfg.HTTPClient = &http.Client{
		Transport: transport,
	}

	return &Client{client: openai.NewClientWithConfig(cfg)}
}
