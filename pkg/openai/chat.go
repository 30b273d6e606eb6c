package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"soundbed/log"
	"soundbed/pkg/errors"
)

const defaultChatModel = openai.GPT4oMini

// ChatCompletion sends a single-turn prompt and returns the assistant's text.
func (c *Client) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: defaultChatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		log.GetLogger().Error("chat completion request failed", zap.Error(err))
		return "", errors.Wrap(errors.CodeAnalysisUnavailable, "chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.CodeAnalysisUnavailable, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
