package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"drawroom/internal/models"

	"github.com/google/uuid"
)

// MemoryDB is a process-local Database for development and tests.
type MemoryDB struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	rooms      map[string]*models.Room
	chats      map[models.RoomID][]*models.Chat
	nextRoomID int
	nextChatID int64
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users: make(map[string]*models.User),
		rooms: make(map[string]*models.Room),
		chats: make(map[models.RoomID][]*models.Chat),
	}
}

func (db *MemoryDB) Close() error { return nil }

func (db *MemoryDB) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.users[email]; exists {
		return nil, fmt.Errorf("create user: %w", ErrDuplicate)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	db.users[email] = user
	copied := *user
	return &copied, nil
}

func (db *MemoryDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	user, ok := db.users[email]
	if !ok {
		return nil, fmt.Errorf("get user by email: %w", ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (db *MemoryDB) CreateRoom(ctx context.Context, slug, adminID string) (*models.Room, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.rooms[slug]; exists {
		return nil, fmt.Errorf("create room: %w", ErrDuplicate)
	}
	db.nextRoomID++
	room := &models.Room{ID: db.nextRoomID, Slug: slug, AdminID: adminID, CreatedAt: time.Now()}
	db.rooms[slug] = room
	copied := *room
	return &copied, nil
}

func (db *MemoryDB) GetRoomBySlug(ctx context.Context, slug string) (*models.Room, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	room, ok := db.rooms[slug]
	if !ok {
		return nil, fmt.Errorf("get room by slug: %w", ErrNotFound)
	}
	copied := *room
	return &copied, nil
}

func (db *MemoryDB) SaveChat(ctx context.Context, chat *models.Chat) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.nextChatID++
	chat.ID = db.nextChatID
	chat.CreatedAt = time.Now()
	copied := *chat
	db.chats[chat.RoomID] = append(db.chats[chat.RoomID], &copied)
	return nil
}

func (db *MemoryDB) ListRecentChats(ctx context.Context, roomID models.RoomID, limit int) ([]*models.Chat, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	all := db.chats[roomID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*models.Chat, 0, len(all))
	for _, c := range all {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}
