package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/hub"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
)

// WebSocketHandler upgrades HTTP requests and hands live connections
// to the hub.
type WebSocketHandler struct {
	hub      *hub.Hub
	logger   logger.Logger
	opts     hub.WebSocketOptions
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hubInstance *hub.Hub, log logger.Logger, opts hub.WebSocketOptions) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hubInstance,
		logger: log.WithField("handler", "websocket"),
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The browser client is served from a different origin.
				return true
			},
		},
	}
}

// Connect upgrades the request and blocks until the connection dies.
// Subscriptions happen afterwards via subscribe control messages.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("failed to upgrade connection: %v", err)
		return
	}

	wsConn := hub.NewWebSocketConnection(conn, h.logger, h.hub.Clock(), h.opts)
	h.hub.AttachWebSocket(wsConn)

	<-wsConn.Context().Done()
}
