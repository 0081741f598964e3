package database

import (
	"context"
	"errors"

	"drawroom/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, slug, adminID string) (*models.Room, error)
	GetRoomBySlug(ctx context.Context, slug string) (*models.Room, error)
}

// ChatRepository is the persisted room history.
type ChatRepository interface {
	SaveChat(ctx context.Context, chat *models.Chat) error
	// ListRecentChats returns at most limit of the newest chats of a room,
	// oldest first.
	ListRecentChats(ctx context.Context, roomID models.RoomID, limit int) ([]*models.Chat, error)
}

type Database interface {
	UserRepository
	RoomRepository
	ChatRepository
	Close() error
}
