package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundbed/config"
	"soundbed/internal/dto"
	"soundbed/internal/storage"
	"soundbed/internal/types"
	apperrors "soundbed/pkg/errors"
)

type stubDispatcher struct {
	payloads []types.BgmTaskPayload
	err      error
}

func (d *stubDispatcher) SubmitBgmTask(payload types.BgmTaskPayload) error {
	if d.err != nil {
		return d.err
	}
	d.payloads = append(d.payloads, payload)
	return nil
}

func setupTestDB(t *testing.T) {
	t.Helper()
	originalDir := storage.DBDir
	originalDB := storage.DB
	storage.DBDir = t.TempDir()
	t.Cleanup(func() {
		storage.DBDir = originalDir
		storage.DB = originalDB
	})
	storage.InitDB()
}

func TestStartBgmTaskSubmitsToDispatcher(t *testing.T) {
	setupTestConfig(t)
	setupTestDB(t)

	disp := &stubDispatcher{}
	svc := &Service{Dispatcher: disp}

	zero := 0.0
	res, err := svc.StartBgmTask(dto.StartBgmTaskReq{MediaSrc: "/tmp/input.mp4", BgmLevel: &zero})
	require.NoError(t, err)
	require.Len(t, disp.payloads, 1)
	assert.Equal(t, res.TaskId, disp.payloads[0].TaskID)

	// An explicit zero is a real request to mute the BGM, not "use default".
	require.NotNil(t, disp.payloads[0].BgmLevel)
	assert.Zero(t, *disp.payloads[0].BgmLevel)

	task, err := storage.GetTask(res.TaskId)
	require.NoError(t, err)
	assert.Zero(t, task.BgmLevel)
}

func TestStartBgmTaskDefaultsLevelWhenUnset(t *testing.T) {
	setupTestConfig(t)
	setupTestDB(t)

	disp := &stubDispatcher{}
	svc := &Service{Dispatcher: disp}

	res, err := svc.StartBgmTask(dto.StartBgmTaskReq{MediaSrc: "/tmp/input.mp4"})
	require.NoError(t, err)

	task, err := storage.GetTask(res.TaskId)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, task.BgmLevel, 1e-9)
}

func TestStartBgmTaskDispatcherFailureMarksTask(t *testing.T) {
	setupTestConfig(t)
	setupTestDB(t)

	disp := &stubDispatcher{err: errors.New("redis down")}
	svc := &Service{Dispatcher: disp}

	_, err := svc.StartBgmTask(dto.StartBgmTaskReq{MediaSrc: "/tmp/input.mp4"})
	require.Error(t, err)

	tasks, err := storage.GetTaskHistory(1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, types.BgmTaskStatusFailed, tasks[0].Status)
}

func TestStartBgmTaskRejectsOutOfRangeLevel(t *testing.T) {
	setupTestConfig(t)
	setupTestDB(t)

	svc := &Service{}
	bad := 1.5
	_, err := svc.StartBgmTask(dto.StartBgmTaskReq{MediaSrc: "/tmp/input.mp4", BgmLevel: &bad})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParams, apperrors.GetCode(err))
}

func TestResolveBgmLevel(t *testing.T) {
	setupTestConfig(t)

	assert.InDelta(t, 0.3, resolveBgmLevel(types.RunOptions{}), 1e-9)

	zero := 0.0
	assert.Zero(t, resolveBgmLevel(types.RunOptions{BgmLevel: &zero}))

	custom := 0.8
	assert.InDelta(t, 0.8, resolveBgmLevel(types.RunOptions{BgmLevel: &custom}), 1e-9)
}

func TestProcessMediaRemovesTaskDirOnFailure(t *testing.T) {
	setupTestConfig(t)
	config.Conf.App.TempDir = t.TempDir()

	svc := newTestService(t, nil)
	_, err := svc.ProcessMedia(context.Background(), "cleanup-1", "/nonexistent/input.mp3", types.RunOptions{}, nil)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(config.Conf.App.TempDir, "cleanup-1"))
	assert.True(t, os.IsNotExist(statErr))
}
