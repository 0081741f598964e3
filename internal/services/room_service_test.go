package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"drawroom/internal/database"
	"drawroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPresence struct {
	online []models.ActiveUser
	err    error
}

func (stubPresence) Join(context.Context, models.RoomID, string, string) error  { return nil }
func (stubPresence) Touch(context.Context, models.RoomID, string, string) error { return nil }
func (stubPresence) Leave(context.Context, models.RoomID, string, string) error { return nil }
func (s stubPresence) Online(context.Context, models.RoomID) ([]models.ActiveUser, error) {
	return s.online, s.err
}

func TestRoomService_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := NewRoomService(database.NewMemoryDB(), nil, 50)

	room, err := svc.CreateRoom(ctx, &models.CreateRoomRequest{Name: "  sketch  "}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "sketch", room.Slug)
	assert.Equal(t, "admin-1", room.AdminID)

	_, err = svc.CreateRoom(ctx, &models.CreateRoomRequest{Name: "sketch"}, "admin-2")
	assert.ErrorIs(t, err, ErrRoomExists)

	found, err := svc.GetRoomBySlug(ctx, "sketch")
	require.NoError(t, err)
	assert.Equal(t, room.ID, found.ID)

	_, err = svc.GetRoomBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomService_CreateRoomValidation(t *testing.T) {
	svc := NewRoomService(database.NewMemoryDB(), nil, 50)

	for _, name := range []string{"", "   ", strings.Repeat("x", maxRoomNameLength+1)} {
		_, err := svc.CreateRoom(context.Background(), &models.CreateRoomRequest{Name: name}, "admin")
		assert.ErrorIs(t, err, ErrRoomNameRequired)
	}
}

func TestRoomService_RecentChatsHonoursLimit(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemoryDB()
	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveChat(ctx, &models.Chat{RoomID: "1", Message: fmt.Sprintf("m%d", i)}))
	}
	svc := NewRoomService(db, nil, 3)

	chats, err := svc.RecentChats(ctx, "1")
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, "m2", chats[0].Message)
	assert.Equal(t, "m4", chats[2].Message)

	empty, err := svc.RecentChats(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRoomService_ActiveUsers(t *testing.T) {
	ctx := context.Background()

	svc := NewRoomService(database.NewMemoryDB(), nil, 50)
	users, err := svc.ActiveUsers(ctx, "1")
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	svc = NewRoomService(database.NewMemoryDB(), stubPresence{online: []models.ActiveUser{{UserID: "u1"}}}, 50)
	users, err = svc.ActiveUsers(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "u1", users[0].UserID)

	svc = NewRoomService(database.NewMemoryDB(), stubPresence{err: assert.AnError}, 50)
	_, err = svc.ActiveUsers(ctx, "1")
	assert.ErrorIs(t, err, assert.AnError)
}
