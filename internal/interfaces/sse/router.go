package sse

import (
	"github.com/gin-gonic/gin"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/hub"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
)

// InitSSERouter mounts the server-sent events endpoint.
func InitSSERouter(log logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup) {
	sseHandler := NewServerSentEventHandler(hubInstance, log)

	rg.GET("/sse", sseHandler.Connect)
}
