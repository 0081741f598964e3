package handlers

import (
	"net/http"

	ws "drawroom/internal/websocket"
)

type HealthHandlers struct {
	manager  *ws.Manager
	registry *ws.Registry
}

func NewHealthHandlers(manager *ws.Manager, registry *ws.Registry) *HealthHandlers {
	return &HealthHandlers{manager: manager, registry: registry}
}

func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	rooms, members := h.manager.Stats()
	writeJSON(w, http.StatusOK, map[string]int{
		"rooms":       rooms,
		"members":     members,
		"connections": h.registry.Count(),
	})
}
