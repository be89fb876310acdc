package handler

import (
	"net/http"

	"auction-house/internal/hub"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// clientCommand is the inbound message a connected client may send to
// manage its listing subscriptions.
type clientCommand struct {
	Action    string `json:"action"` // "join" or "leave"
	ListingID string `json:"listing_id"`
}

// WSHandler bridges websocket connections to the notification hub: each
// connection becomes one hub subscriber, and disconnecting removes it from
// every group it joined.
type WSHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeWS handles GET /ws
func (h *WSHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Warn("ServeWS: upgrade failed", map[string]any{"error": err.Error()})
		return
	}
	defer conn.Close()

	sub := h.hub.Register()
	defer h.hub.Remove(sub)

	// Writer: drains hub events to the connection until Remove closes the
	// channel or the write fails.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range sub.Events() {
			if err := conn.WriteJSON(event); err != nil {
				utils.Debug("ServeWS: write failed, dropping connection", map[string]any{"error": err.Error()})
				conn.Close()
				return
			}
		}
	}()

	// Reader: join/leave commands until the client disconnects.
	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			break
		}
		switch cmd.Action {
		case "join":
			if cmd.ListingID != "" {
				h.hub.Subscribe(sub, cmd.ListingID)
			}
		case "leave":
			if cmd.ListingID != "" {
				h.hub.Unsubscribe(sub, cmd.ListingID)
			}
		default:
			// Unknown actions are ignored, the connection stays up.
		}
	}

	h.hub.Remove(sub)
	<-done
}
