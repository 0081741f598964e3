package handlers

import (
	"net/http"

	ws "drawroom/internal/websocket"
	"drawroom/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	registry       *ws.Registry
	protocol       *ws.Protocol
	upgrader       websocket.Upgrader
	sendBuffer     int
	maxMessageSize int64
}

func NewWebSocketHandlers(registry *ws.Registry, protocol *ws.Protocol, sendBuffer int, maxMessageSize int64) *WebSocketHandlers {
	return &WebSocketHandlers{
		registry:       registry,
		protocol:       protocol,
		sendBuffer:     sendBuffer,
		maxMessageSize: maxMessageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the request and authenticates the connection with
// the token query parameter. A connection whose token is rejected is closed
// before any frame is read.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.Err(err))
		return
	}

	client := ws.NewClient(conn, h.sendBuffer, h.maxMessageSize)
	if _, err := h.registry.Register(client, r.URL.Query().Get("token")); err != nil {
		logger.Warn("websocket authentication failed", logger.Conn(client.ID()), "remote_addr", r.RemoteAddr, logger.Err(err))
		return
	}

	go client.WritePump()
	client.ReadPump(r.Context(), h.protocol)
}
