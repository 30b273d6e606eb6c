package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/errors"
)

// Transcribe runs speech-to-text over the audio file and returns timestamped
// phrase segments.
func (c *Client) Transcribe(ctx context.Context, audioPath string) ([]types.TranscriptSegment, error) {
	log.GetLogger().Info("starting transcription", zap.String("file", audioPath))

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		log.GetLogger().Error("transcription request failed", zap.Error(err))
		return nil, errors.Wrap(errors.CodeTranscribeFailed, "transcription request failed", err)
	}

	segments := make([]types.TranscriptSegment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, types.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	log.GetLogger().Info("transcription completed", zap.Int("segments", len(segments)))
	return segments, nil
}
