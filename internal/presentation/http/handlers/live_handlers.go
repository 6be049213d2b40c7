package handlers

import (
	"net/http"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/messaging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin allowlisting happens in the CORS layer; the feed itself
		// carries only aggregate counts.
		return true
	},
}

// LiveHandlers handles the websocket live engagement feed
type LiveHandlers struct {
	broadcaster *messaging.EngagementBroadcaster
	logger      *logging.ChanneledLogger
}

// NewLiveHandlers creates the live feed handlers
func NewLiveHandlers(broadcaster *messaging.EngagementBroadcaster, logger *logging.ChanneledLogger) *LiveHandlers {
	return &LiveHandlers{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// GetLiveFeed handles GET /api/v1/engagement/live by upgrading to a
// websocket and streaming engagement updates until the client disconnects
func (h *LiveHandlers) GetLiveFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Live().Error("Websocket upgrade failed", "error", err)
		return
	}

	client := &messaging.Client{
		Conn: conn,
		Send: make(chan []byte, 32),
	}
	h.broadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump drains the client's send channel onto the wire
func (h *LiveHandlers) writePump(client *messaging.Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(config.LiveFeedWriteDeadline))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	client.Conn.SetWriteDeadline(time.Now().Add(config.LiveFeedWriteDeadline))
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames and unregisters on disconnect
func (h *LiveHandlers) readPump(client *messaging.Client) {
	defer h.broadcaster.Unregister(client)

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
