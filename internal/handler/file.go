package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"soundbed/internal/response"
	apperrors "soundbed/pkg/errors"
)

const uploadRoot = "uploads"

func (h *Handler) UploadFile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "no file in request", err))
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "no file uploaded"))
		return
	}

	var savedFiles []string
	for _, file := range files {
		savePath := filepath.Join(uploadRoot, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, savePath); err != nil {
			response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "save uploaded file failed: "+file.Filename, err))
			return
		}
		savedFiles = append(savedFiles, savePath)
	}

	response.Success(c, gin.H{"file_path": savedFiles})
}

func (h *Handler) DownloadFile(c *gin.Context) {
	requestedFile := strings.TrimPrefix(c.Param("filepath"), "/")
	if requestedFile == "" || hasParentTraversal(requestedFile) {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "invalid file path"))
		return
	}

	localFilePath := filepath.Join(".", filepath.Clean(requestedFile))
	if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
		c.JSON(404, response.FromError(apperrors.ErrFileNotFound))
		return
	}
	c.FileAttachment(localFilePath, filepath.Base(localFilePath))
}

func hasParentTraversal(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
