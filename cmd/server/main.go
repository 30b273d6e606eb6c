package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/queue"
	"soundbed/internal/server"
	"soundbed/internal/service"
	"soundbed/internal/storage"
	"soundbed/internal/taskrunner"
	"soundbed/log"
)

func main() {
	useQueue := flag.Bool("queue", false, "process tasks through the Redis-backed queue worker")
	flag.Parse()

	log.InitLogger()
	defer log.GetLogger().Sync()

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("load config failed", zap.Error(err))
		return
	}
	if created {
		log.GetLogger().Info("wrote default config, fill in API keys before starting tasks")
	}
	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid config", zap.Error(err))
		return
	}

	storage.InitDB()

	// Mark any stale "running" tasks as "failed" (zombie cleanup)
	if count, err := storage.MarkStaleTasks(); err != nil {
		log.GetLogger().Warn("failed to mark stale tasks", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale tasks as failed", zap.Int64("count", count))
	}

	if err = storage.LocateBinaries(); err != nil {
		log.GetLogger().Error("ffmpeg/ffprobe not found in PATH", zap.Error(err))
		return
	}

	svc := service.NewService()
	if svc == nil {
		os.Exit(1)
	}

	if *useQueue || config.Conf.Queue.Enabled {
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		defer q.Close()
		svc.Dispatcher = q
		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("queue worker stopped", zap.Error(err))
			}
		}()
	} else {
		runner := taskrunner.New(svc, taskrunner.DefaultConfig())
		defer runner.Close()
		svc.Dispatcher = runner
	}

	if err = server.StartBackend(svc); err != nil {
		log.GetLogger().Error("http server failed", zap.Error(err))
		os.Exit(1)
	}
}
