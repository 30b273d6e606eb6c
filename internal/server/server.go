package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/router"
	"soundbed/internal/service"
	"soundbed/log"
)

// StartBackend builds the HTTP engine and blocks serving it.
func StartBackend(svc *service.Service) error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.SetupRouter(engine, svc)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("http server listening", zap.String("addr", addr))
	return engine.Run(addr)
}
