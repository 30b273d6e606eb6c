package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/service"
	"soundbed/internal/storage"
	"soundbed/internal/taskrunner"
	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/util"
)

func main() {
	inputDir := flag.String("input", "", "directory of media files to process")
	outputDir := flag.String("output", "", "directory for finished files")
	level := flag.Float64("volume", -1, "bgm level in [0, 1], negative means config default")
	resolution := flag.String("resolution", "", "placeholder video resolution for audio-only inputs, e.g. 1280x720")
	force := flag.Bool("force", false, "reprocess inputs whose output file already exists")
	flag.Parse()

	log.InitLogger()
	defer log.GetLogger().Sync()

	if *inputDir == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "usage: batch -input <dir> -output <dir> [-volume 0.3] [-resolution 1280x720] [-force]")
		os.Exit(2)
	}

	if _, err := config.LoadOrCreateConfig(); err != nil {
		log.GetLogger().Error("load config failed", zap.Error(err))
		os.Exit(1)
	}
	if err := config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid config", zap.Error(err))
		os.Exit(1)
	}
	if err := storage.LocateBinaries(); err != nil {
		log.GetLogger().Error("ffmpeg/ffprobe not found in PATH", zap.Error(err))
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.GetLogger().Error("create output directory failed", zap.Error(err))
		os.Exit(1)
	}

	entries, err := os.ReadDir(*inputDir)
	if err != nil {
		log.GetLogger().Error("read input directory failed", zap.Error(err))
		os.Exit(1)
	}

	storage.InitDB()

	svc := service.NewService()
	if svc == nil {
		os.Exit(1)
	}

	// Queue sized to the directory so submissions never hit a full queue.
	runner := taskrunner.New(svc, taskrunner.Config{
		QueueSize:   len(entries) + 1,
		Concurrency: config.Conf.App.TaskLimit,
	})
	defer runner.Close()

	var bgmLevel *float64
	if *level >= 0 {
		bgmLevel = level
	}

	type submission struct {
		taskId string
		name   string
	}
	var submitted []submission
	var skipped int

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !util.IsAudioFile(name) && !util.IsVideoFile(name) {
			continue
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		outputPath := filepath.Join(*outputDir, base+"_bgm.mp4")
		if !*force {
			if _, err := os.Stat(outputPath); err == nil {
				log.GetLogger().Info("output exists, skipping", zap.String("file", name))
				skipped++
				continue
			}
		}

		taskId := "batch-" + uuid.NewString()
		task := &types.BgmTask{
			TaskId:     taskId,
			MediaSrc:   filepath.Join(*inputDir, name),
			Status:     types.BgmTaskStatusProcessing,
			StatusMsg:  "Queued",
			BgmLevel:   config.Conf.Bgm.DefaultLevel,
			Resolution: *resolution,
			OutputPath: outputPath,
		}
		if bgmLevel != nil {
			task.BgmLevel = *bgmLevel
		}
		if err := storage.SaveTask(task); err != nil {
			log.GetLogger().Error("save task failed", zap.String("file", name), zap.Error(err))
			continue
		}

		log.GetLogger().Info("queued", zap.String("file", name), zap.String("taskId", taskId))
		err := runner.SubmitBgmTask(types.BgmTaskPayload{
			TaskID:     taskId,
			MediaSrc:   task.MediaSrc,
			BgmLevel:   &task.BgmLevel,
			Resolution: *resolution,
		})
		if err != nil {
			log.GetLogger().Error("submit failed", zap.String("file", name), zap.Error(err))
			continue
		}
		submitted = append(submitted, submission{taskId: taskId, name: name})
	}

	runner.Drain()

	var processed, failed int
	for _, sub := range submitted {
		task, err := storage.GetTask(sub.taskId)
		if err != nil || task.Status != types.BgmTaskStatusSuccess {
			failed++
			continue
		}
		processed++
	}

	fmt.Printf("done: %d processed, %d skipped, %d failed\n", processed, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
