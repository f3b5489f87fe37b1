package http

import (
	"chat-core/domain/event"
	"chat-core/sink"
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// wsEnvelope wraps every outbound event with a type discriminator so clients
// can route without probing payload shapes.
type wsEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func toEnvelope(e event.DomainEvent) wsEnvelope {
	switch evt := e.(type) {
	case event.ChatMessagePayload:
		return wsEnvelope{Type: "message", Payload: evt}
	case event.MessagesRead:
		return wsEnvelope{Type: "read", Payload: evt}
	case event.DeliveryFailure:
		return wsEnvelope{Type: "error", Payload: evt}
	default:
		return wsEnvelope{Type: "unknown", Payload: evt}
	}
}

// connect manages the lifecycle of one WebSocket connection. It registers a
// dedicated sink for the user's inbox, error channel, and requested rooms,
// then drains that sink onto the wire until the client goes away. Cleanup of
// every subscription is deferred so it runs on all disconnect paths,
// abnormal termination included.
func (h *ChatHandler) connect(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(string)
	roomsRaw, _ := c.Locals("rooms").(string)
	rooms := parseRooms(roomsRaw)

	connectionID := uuid.NewString()
	clientSink := sink.NewClientSink(h.log, h.connectionBufferSize)

	if err := h.chatService.Connect(connectionID, userID, rooms, clientSink); err != nil {
		h.log.Warn("Connection refused",
			"user_id", userID, "rooms", roomsRaw, "error", err)
		_ = c.WriteJSON(wsEnvelope{Type: "error", Payload: fmt.Sprintf("subscription refused: %v", err)})
		_ = c.Close()
		return
	}
	defer h.chatService.Disconnect(connectionID)
	defer func() { _ = c.Close() }()

	h.log.Info("Client connected",
		"user_id", userID, "connection_id", connectionID, "rooms", len(rooms))

	// Reader goroutine: sends arrive over REST, so inbound traffic is only
	// control frames. Its exit signals the peer is gone.
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.SetReadLimit(1024)
		_ = c.SetReadDeadline(time.Now().Add(pongWait))
		c.SetPongHandler(func(string) error {
			return c.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			h.log.Info("Client disconnected",
				"user_id", userID, "connection_id", connectionID)
			return
		case evt := <-clientSink.ConnectedUserEvent:
			_ = c.SetWriteDeadline(time.Now().Add(h.deliveryTimeout))
			if err := c.WriteJSON(toEnvelope(evt)); err != nil {
				h.log.Error("Failed to push event to socket",
					"user_id", userID,
					"connection_id", connectionID,
					"error", err)
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(h.deliveryTimeout))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
