package router

import (
	"github.com/gin-gonic/gin"

	"soundbed/internal/handler"
	"soundbed/internal/service"
)

func SetupRouter(r *gin.Engine, svc *service.Service) {
	api := r.Group("/api")

	hdl := handler.NewHandler(svc)
	{
		api.POST("/bgm/task", hdl.StartBgmTask)
		api.GET("/bgm/task", hdl.GetBgmTask)
		api.GET("/bgm/history", hdl.GetTaskHistory)
		api.DELETE("/bgm/task/:taskId", hdl.DeleteTask)
		api.GET("/bgm/assets", hdl.GetAssets)
		api.POST("/bgm/assets", hdl.UploadAsset)
		api.POST("/file", hdl.UploadFile)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
	}
}
