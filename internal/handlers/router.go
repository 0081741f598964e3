package handlers

import "net/http"

type Handlers struct {
	Auth      *AuthHandlers
	Rooms     *RoomHandlers
	WebSocket *WebSocketHandlers
	Health    *HealthHandlers
}

// NewRouter wires every route behind tracing, request logging and CORS.
func NewRouter(service string, h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", h.Auth.Signup)
	mux.HandleFunc("POST /signin", h.Auth.Signin)

	mux.HandleFunc("POST /room", h.Rooms.CreateRoom)
	mux.HandleFunc("GET /room/{slug}", h.Rooms.GetRoomBySlug)
	mux.HandleFunc("GET /room/{roomId}/presence", h.Rooms.GetPresence)
	mux.HandleFunc("GET /chat/{roomId}", h.Rooms.GetChats)

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /stats", h.Health.Stats)

	mux.HandleFunc("/ws", h.WebSocket.HandleWebSocket)

	return Tracing(service)(RequestLogger(CORS(mux)))
}
