package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"drawroom/internal/database"
	"drawroom/internal/models"
	"drawroom/internal/presence"
)

var (
	ErrRoomNameRequired = errors.New("room name is required")
	ErrRoomExists       = errors.New("room already exists")
	ErrRoomNotFound     = errors.New("room not found")
)

const maxRoomNameLength = 64

type RoomService struct {
	db           database.Database
	presence     presence.Store
	historyLimit int
}

func NewRoomService(db database.Database, store presence.Store, historyLimit int) *RoomService {
	if store == nil {
		store = presence.Noop{}
	}
	return &RoomService{db: db, presence: store, historyLimit: historyLimit}
}

// CreateRoom stores a room whose slug is the requested name.
func (s *RoomService) CreateRoom(ctx context.Context, req *models.CreateRoomRequest, adminID string) (*models.Room, error) {
	slug := strings.TrimSpace(req.Name)
	if slug == "" {
		return nil, ErrRoomNameRequired
	}
	if len(slug) > maxRoomNameLength {
		return nil, fmt.Errorf("%w: at most %d characters", ErrRoomNameRequired, maxRoomNameLength)
	}

	room, err := s.db.CreateRoom(ctx, slug, adminID)
	if errors.Is(err, database.ErrDuplicate) {
		return nil, ErrRoomExists
	}
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

func (s *RoomService) GetRoomBySlug(ctx context.Context, slug string) (*models.Room, error) {
	room, err := s.db.GetRoomBySlug(ctx, slug)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

// RecentChats returns the newest persisted events of a room, oldest first.
func (s *RoomService) RecentChats(ctx context.Context, roomID models.RoomID) ([]*models.Chat, error) {
	chats, err := s.db.ListRecentChats(ctx, roomID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	if chats == nil {
		chats = []*models.Chat{}
	}
	return chats, nil
}

func (s *RoomService) ActiveUsers(ctx context.Context, roomID models.RoomID) ([]models.ActiveUser, error) {
	users, err := s.presence.Online(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	if users == nil {
		users = []models.ActiveUser{}
	}
	return users, nil
}
