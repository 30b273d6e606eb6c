package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/service"
	"soundbed/internal/storage"
	"soundbed/internal/types"
	"soundbed/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-machine friendly default config.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// Runner executes queued tasks with in-memory workers. It is the default
// execution backend when no Redis queue is configured.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan types.BgmTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	inflight sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan types.BgmTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitBgmTask queues a BGM composition job.
func (r *Runner) SubmitBgmTask(payload types.BgmTaskPayload) error {
	if payload.MediaSrc == "" {
		return errors.New("bgm task media source is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	r.inflight.Add(1)
	select {
	case <-r.ctx.Done():
		r.inflight.Done()
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.String("task_id", payload.TaskID))
		return nil
	default:
		r.inflight.Done()
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			r.processTask(workerID, payload)
		}
	}
}

func (r *Runner) processTask(workerID int, payload types.BgmTaskPayload) {
	defer r.inflight.Done()

	task, err := storage.GetTask(payload.TaskID)
	if err != nil || task == nil {
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
		if saveErr := storage.SaveTask(task); saveErr != nil {
			log.GetLogger().Error("[TaskRunner] save task row failed",
				zap.Int("worker_id", workerID),
				zap.String("task_id", payload.TaskID),
				zap.Error(saveErr))
			return
		}
	}

	r.service.RunBgmTask(r.ctx, task)

	if task.Status == types.BgmTaskStatusFailed {
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", payload.TaskID),
			zap.String("reason", task.FailReason))
		return
	}

	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.String("task_id", payload.TaskID))
}

// Drain blocks until every submitted task has finished processing. The batch
// CLI uses it to hold the process open while workers run.
func (r *Runner) Drain() {
	r.inflight.Wait()
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
