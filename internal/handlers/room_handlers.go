package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"drawroom/internal/auth"
	"drawroom/internal/models"
	"drawroom/internal/services"
	"drawroom/pkg/logger"
)

type RoomHandlers struct {
	roomService *services.RoomService
	verifier    auth.TokenVerifier
}

func NewRoomHandlers(roomService *services.RoomService, verifier auth.TokenVerifier) *RoomHandlers {
	return &RoomHandlers{
		roomService: roomService,
		verifier:    verifier,
	}
}

type roomIDResponse struct {
	RoomID int `json:"roomId"`
}

type chatsResponse struct {
	Messages []*models.Chat `json:"messages"`
}

type presenceResponse struct {
	RoomID models.RoomID       `json:"roomId"`
	Users  []models.ActiveUser `json:"users"`
}

func (h *RoomHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid format")
		return
	}

	room, err := h.roomService.CreateRoom(r.Context(), &req, userID)
	switch {
	case errors.Is(err, services.ErrRoomNameRequired):
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrRoomExists):
		writeMessage(w, http.StatusConflict, "slug already exists")
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("create room failed", logger.User(userID), logger.Err(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.FromContext(r.Context()).Info("room created", logger.User(userID), "slug", room.Slug, "room_id", room.ID)
	writeJSON(w, http.StatusOK, roomIDResponse{RoomID: room.ID})
}

func (h *RoomHandlers) GetRoomBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	room, err := h.roomService.GetRoomBySlug(r.Context(), slug)
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		writeMessage(w, http.StatusNotFound, "room not found")
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("get room failed", logger.Err(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, roomIDResponse{RoomID: room.ID})
}

// GetChats returns the recent history of a room, oldest first.
func (h *RoomHandlers) GetChats(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}

	chats, err := h.roomService.RecentChats(r.Context(), roomID)
	if err != nil {
		logger.FromContext(r.Context()).Error("list chats failed", logger.Room(roomID.String()), logger.Err(err))
		writeMessage(w, http.StatusInternalServerError, "error in chat route")
		return
	}

	writeJSON(w, http.StatusOK, chatsResponse{Messages: chats})
}

func (h *RoomHandlers) GetPresence(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDFromPath(w, r)
	if !ok {
		return
	}

	users, err := h.roomService.ActiveUsers(r.Context(), roomID)
	if err != nil {
		logger.FromContext(r.Context()).Error("list presence failed", logger.Room(roomID.String()), logger.Err(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, presenceResponse{RoomID: roomID, Users: users})
}

func roomIDFromPath(w http.ResponseWriter, r *http.Request) (models.RoomID, bool) {
	raw := strings.TrimSpace(r.PathValue("roomId"))
	if raw == "" {
		writeMessage(w, http.StatusBadRequest, "invalid room id")
		return "", false
	}
	return models.RoomID(raw), true
}
