package sse

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/hub"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
)

// ServerSentEventHandler serves the read-only event stream. SSE clients
// cannot send control messages, so their subscriptions come from
// poll_id query parameters on the initial request.
type ServerSentEventHandler struct {
	hub    *hub.Hub
	logger logger.Logger
}

func NewServerSentEventHandler(hubInstance *hub.Hub, log logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		hub:    hubInstance,
		logger: log.WithField("handler", "sse"),
	}
}

// Connect opens the stream and blocks until the client goes away.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	pollIDs, err := parsePollIDs(c.QueryArray("poll_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "poll_id must be an integer"})
		return
	}

	conn, err := hub.NewSSEConnection(c.Request.Context(), c.Writer, h.logger)
	if err != nil {
		h.logger.Errorf("failed to open sse stream: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "streaming unsupported"})
		return
	}

	h.hub.Attach(conn)
	for _, pollID := range pollIDs {
		h.hub.Subscribe(conn, pollID)
	}

	h.hub.SendDirect(c.Request.Context(), conn, hub.ConnectedEvent(conn.ID()))

	<-conn.Context().Done()
	h.hub.Disconnect(conn)
}

func parsePollIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
