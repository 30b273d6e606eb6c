// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/service"
	"soundbed/internal/storage"
	"soundbed/internal/types"
	"soundbed/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleBgmTask processes one BGM composition task inside a worker goroutine.
func (h *TaskHandlers) HandleBgmTask(ctx context.Context, t *asynq.Task) error {
	var payload types.BgmTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing bgm task",
		zap.String("task_id", payload.TaskID),
		zap.String("media_src", payload.MediaSrc))

	task, err := storage.GetTask(payload.TaskID)
	if err != nil {
		// The row may not exist when the task was enqueued externally.
		level := config.Conf.Bgm.DefaultLevel
		if payload.BgmLevel != nil {
			level = *payload.BgmLevel
		}
		task = &types.BgmTask{
			TaskId:     payload.TaskID,
			MediaSrc:   payload.MediaSrc,
			Status:     types.BgmTaskStatusProcessing,
			BgmLevel:   level,
			Resolution: payload.Resolution,
		}
		if err := storage.SaveTask(task); err != nil {
			return fmt.Errorf("failed to save task row: %w", err)
		}
	}

	h.service.RunBgmTask(ctx, task)

	if task.Status == types.BgmTaskStatusFailed {
		return fmt.Errorf("bgm task %s failed: %s", task.TaskId, task.FailReason)
	}
	log.GetLogger().Info("[Queue] Bgm task completed", zap.String("task_id", payload.TaskID))
	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBgmTask, h.HandleBgmTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
