package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFileRouter() *gin.Engine {
	router := gin.New()
	h := &Handler{}
	router.GET("/api/file/*filepath", h.DownloadFile)
	router.HEAD("/api/file/*filepath", h.DownloadFile)
	return router
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return tempDir
}

func TestDownloadFileNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	chdirTemp(t)

	router := buildFileRouter()

	req, _ := http.NewRequest("HEAD", "/api/file/tasks/nonexistent/output.mp4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadFileExists(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tempDir := chdirTemp(t)

	taskDir := filepath.Join(tempDir, "tasks", "task1")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(taskDir, "output.mp4"), []byte("data"), 0o644))

	router := buildFileRouter()

	req, _ := http.NewRequest("HEAD", "/api/file/tasks/task1/output.mp4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDownloadFileRejectsTraversal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	chdirTemp(t)

	router := buildFileRouter()

	req, _ := http.NewRequest("GET", "/api/file/tasks/../../etc/passwd", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// The envelope carries the error; HTTP status stays 200 like every
	// other API error.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid file path")
}

func TestHasParentTraversal(t *testing.T) {
	assert.True(t, hasParentTraversal("a/../b"))
	assert.True(t, hasParentTraversal(".."))
	assert.False(t, hasParentTraversal("tasks/task1/output.mp4"))
	assert.False(t, hasParentTraversal("tasks/..dots/file"))
}
