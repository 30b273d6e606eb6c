// Package mocks holds testify mocks for the pipeline's collaborator
// interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"soundbed/internal/types"
)

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) ([]types.TranscriptSegment, error) {
	args := m.Called(ctx, audioPath)
	if segs := args.Get(0); segs != nil {
		return segs.([]types.TranscriptSegment), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockAssetLibrary struct {
	mock.Mock
}

func (m *MockAssetLibrary) Available() bool {
	return m.Called().Bool(0)
}

func (m *MockAssetLibrary) Search(ctx context.Context, theme, mood string) ([]types.AssetRef, error) {
	args := m.Called(ctx, theme, mood)
	if refs := args.Get(0); refs != nil {
		return refs.([]types.AssetRef), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAssetLibrary) Fetch(ctx context.Context, ref types.AssetRef, destPath string) error {
	return m.Called(ctx, ref, destPath).Error(0)
}
