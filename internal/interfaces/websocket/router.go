package websocket

import (
	"github.com/gin-gonic/gin"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/hub"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
)

// InitWebSocketRouter mounts the websocket endpoint.
func InitWebSocketRouter(log logger.Logger, hubInstance *hub.Hub, opts hub.WebSocketOptions, rg *gin.RouterGroup) {
	wsHandler := NewWebSocketHandler(hubInstance, log, opts)

	rg.GET("/ws", wsHandler.Connect)
}
