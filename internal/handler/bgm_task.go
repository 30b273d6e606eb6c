package handler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/dto"
	"soundbed/internal/response"
	"soundbed/internal/storage"
	"soundbed/internal/types"
	"soundbed/log"
	apperrors "soundbed/pkg/errors"
	"soundbed/pkg/util"
)

func (h *Handler) StartBgmTask(c *gin.Context) {
	var req dto.StartBgmTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartBgmTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartBgmTask received request", zap.Any("req", req))

	data, err := h.Service.StartBgmTask(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) GetBgmTask(c *gin.Context) {
	var req dto.GetBgmTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.GetTaskStatus(req.TaskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	tasks, err := storage.GetTaskHistory(200)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "load task history failed", err))
		return
	}

	items := make([]dto.BgmTaskHistoryItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, dto.BgmTaskHistoryItem{
			TaskId:     task.TaskId,
			MediaSrc:   task.MediaSrc,
			Status:     task.Status,
			ProcessPct: task.ProcessPct,
			OutputPath: task.OutputPath,
			CreateTime: task.CreateTime.Format("2006-01-02 15:04:05"),
		})
	}
	response.Success(c, items)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "taskId must not be empty"))
		return
	}

	taskDir := filepath.Join(config.Conf.App.TempDir, taskId)
	if err := os.RemoveAll(taskDir); err != nil {
		log.GetLogger().Error("DeleteTask RemoveAll err", zap.String("path", taskDir), zap.Error(err))
		// Still remove the DB row.
	}

	if err := storage.DeleteTask(taskId); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "delete task failed", err))
		return
	}
	response.Success(c, nil)
}

// GetAssets reports what the configured asset library can currently serve,
// one entry per configured theme.
func (h *Handler) GetAssets(c *gin.Context) {
	library := h.Service.AssetLibrary
	if !library.Available() {
		response.Success(c, gin.H{"available": false, "themes": gin.H{}})
		return
	}

	themes := gin.H{}
	for _, theme := range config.Conf.Bgm.Themes {
		refs, err := library.Search(context.Background(), theme, "")
		if err != nil {
			themes[theme] = 0
			continue
		}
		themes[theme] = len(refs)
	}
	response.Success(c, gin.H{"available": true, "themes": themes})
}

// UploadAsset adds one clip to the configured asset library under a theme.
func (h *Handler) UploadAsset(c *gin.Context) {
	theme := c.PostForm("theme")
	if theme == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "theme must not be empty"))
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "no file in request", err))
		return
	}
	if !util.IsAudioFile(file.Filename) {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "unsupported audio format: "+file.Filename))
		return
	}

	uploader, ok := h.Service.AssetLibrary.(types.AssetUploader)
	if !ok {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeAssetLookupFailed, "asset library does not accept uploads"))
		return
	}

	tempPath := filepath.Join(os.TempDir(),
		util.GenerateRandStringWithUpperLowerNum(8)+"_"+util.SanitizePathName(filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "save uploaded clip failed", err))
		return
	}
	defer os.Remove(tempPath)

	key, err := uploader.Store(c.Request.Context(), theme, file.Filename, tempPath)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	log.GetLogger().Info("asset stored", zap.String("theme", theme), zap.String("key", key))
	response.Success(c, gin.H{"key": key})
}
