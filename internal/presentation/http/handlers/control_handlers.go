package handlers

import (
	"net/http"

	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/messaging"
	"github.com/ProofPulse/proofpulse-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ControlHandlers exposes the live control channel: engines subscribe
// over websocket and operators push control frames over HTTP.
type ControlHandlers struct {
	broadcaster *messaging.ControlBroadcaster
	logger      *logging.ChanneledLogger
}

// NewControlHandlers creates handlers over a broadcaster.
func NewControlHandlers(broadcaster *messaging.ControlBroadcaster, logger *logging.ChanneledLogger) *ControlHandlers {
	return &ControlHandlers{broadcaster: broadcaster, logger: logger}
}

// Subscribe handles GET /api/v1/ws: upgrades and registers an engine.
func (h *ControlHandlers) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Network().Error("Websocket upgrade failed", "error", err.Error())
		}
		return
	}

	client := &messaging.ControlClient{
		Conn: conn,
		Send: make(chan []byte, 10),
	}
	h.broadcaster.Register(client)
}

// PostControl handles POST /api/v1/control: broadcasts one control
// frame to every connected engine.
func (h *ControlHandlers) PostControl(c *gin.Context) {
	var frame messaging.ControlFrame
	if err := c.ShouldBindJSON(&frame); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid control frame"})
		return
	}

	switch frame.Action {
	case messaging.ActionPause, messaging.ActionResume, messaging.ActionRefresh:
		h.broadcaster.Broadcast(frame.Action)
		c.JSON(http.StatusOK, gin.H{"success": true, "clients": h.broadcaster.ClientCount()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown control action"})
	}
}
