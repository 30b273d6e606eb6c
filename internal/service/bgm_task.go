package service

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/dto"
	"soundbed/internal/storage"
	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/errors"
)

// TaskDispatcher hands a persisted task to an execution backend. The server
// wires either the in-process runner or the Redis queue here.
type TaskDispatcher interface {
	SubmitBgmTask(payload types.BgmTaskPayload) error
}

// StartBgmTask persists a new task row and hands it to the configured
// dispatcher (falling back to a plain goroutine when none is wired). The
// returned response carries the task id callers poll with.
func (s *Service) StartBgmTask(req dto.StartBgmTaskReq) (*dto.StartBgmTaskRes, error) {
	if req.MediaSrc == "" {
		return nil, errors.ErrInvalidParams
	}
	level := config.Conf.Bgm.DefaultLevel
	if req.BgmLevel != nil {
		if *req.BgmLevel < 0 || *req.BgmLevel > 1 {
			return nil, errors.New(errors.CodeInvalidParams, "bgm_level must be within [0, 1]")
		}
		level = *req.BgmLevel
	}

	taskId := uuid.NewString()
	task := &types.BgmTask{
		TaskId:     taskId,
		MediaSrc:   req.MediaSrc,
		Status:     types.BgmTaskStatusProcessing,
		StatusMsg:  "Queued",
		BgmLevel:   level,
		Resolution: req.Resolution,
	}
	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("StartBgmTask save task failed", zap.Error(err))
		return nil, errors.Wrap(errors.CodeDBError, "save task failed", err)
	}

	if s.Dispatcher != nil {
		err := s.Dispatcher.SubmitBgmTask(types.BgmTaskPayload{
			TaskID:     taskId,
			MediaSrc:   req.MediaSrc,
			BgmLevel:   &task.BgmLevel,
			Resolution: req.Resolution,
		})
		if err != nil {
			task.Status = types.BgmTaskStatusFailed
			task.FailReason = "task submission failed"
			_ = storage.SaveTask(task)
			return nil, errors.Wrap(errors.CodeUnknown, "submit task failed", err)
		}
	} else {
		go s.RunBgmTask(context.Background(), task)
	}

	return &dto.StartBgmTaskRes{TaskId: taskId}, nil
}

// RunBgmTask executes the pipeline for a persisted task, keeping its row's
// status, progress and failure reason current. Safe to call from a goroutine
// or a queue worker.
func (s *Service) RunBgmTask(ctx context.Context, task *types.BgmTask) {
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.GetLogger().Error("bgm task panic",
				zap.String("taskId", task.TaskId), zap.Any("panic", r), zap.ByteString("stack", buf))
			task.Status = types.BgmTaskStatusFailed
			task.FailReason = "internal error"
			_ = storage.SaveTask(task)
		}
	}()

	log.GetLogger().Info("bgm task started", zap.String("taskId", task.TaskId))
	task.Status = types.BgmTaskStatusProcessing
	task.FailReason = ""
	_ = storage.SaveTask(task)

	opts := types.RunOptions{
		BgmLevel:   &task.BgmLevel,
		OutputPath: task.OutputPath,
	}
	if task.Resolution != "" {
		opts.Width, opts.Height = parseResolution(task.Resolution)
	}

	result, err := s.ProcessMedia(ctx, task.TaskId, task.MediaSrc, opts, func(pct uint8, msg string) {
		task.ProcessPct = pct
		task.StatusMsg = msg
		_ = storage.SaveTask(task)
	})
	if err != nil {
		log.GetLogger().Error("bgm task failed",
			zap.String("taskId", task.TaskId), zap.Error(err))
		task.Status = types.BgmTaskStatusFailed
		task.FailReason = errors.GetMessage(err)
		_ = storage.SaveTask(task)
		return
	}

	task.Status = types.BgmTaskStatusSuccess
	task.ProcessPct = 100
	task.StatusMsg = "Completed"
	task.OutputPath = result.OutputPath
	task.SegmentJSON = marshalSegments(result.Segments, result.Sources)
	_ = storage.SaveTask(task)
	log.GetLogger().Info("bgm task completed",
		zap.String("taskId", task.TaskId), zap.String("output", result.OutputPath),
		zap.Bool("clippingGuard", result.MixReport.ClippingGuard))
}

// GetTaskStatus reads the persisted state of one task.
func (s *Service) GetTaskStatus(taskId string) (*dto.BgmTaskStatusRes, error) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, "task not found", err)
	}
	return dto.BgmTaskStatusFromModel(task), nil
}

// parseResolution splits "1280x720" into its dimensions, returning zeros for
// anything unparseable.
func parseResolution(resolution string) (width, height int) {
	if _, err := fmt.Sscanf(resolution, "%dx%d", &width, &height); err != nil {
		return 0, 0
	}
	return width, height
}
