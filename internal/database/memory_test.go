package database

import (
	"context"
	"fmt"
	"testing"

	"drawroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDB_Users(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()

	user, err := db.CreateUser(ctx, "a@b.co", "hash", "Ann")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	_, err = db.CreateUser(ctx, "a@b.co", "hash", "Ann")
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := db.GetUserByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = db.GetUserByEmail(ctx, "nobody@b.co")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDB_Rooms(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()

	r1, err := db.CreateRoom(ctx, "sketch", "u1")
	require.NoError(t, err)
	r2, err := db.CreateRoom(ctx, "other", "u1")
	require.NoError(t, err)
	assert.Equal(t, r1.ID+1, r2.ID)

	_, err = db.CreateRoom(ctx, "sketch", "u2")
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := db.GetRoomBySlug(ctx, "sketch")
	require.NoError(t, err)
	assert.Equal(t, r1.ID, got.ID)

	_, err = db.GetRoomBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDB_ListRecentChatsKeepsNewestOldestFirst(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveChat(ctx, &models.Chat{RoomID: "1", UserID: "u", Message: fmt.Sprintf("m%d", i)}))
	}
	require.NoError(t, db.SaveChat(ctx, &models.Chat{RoomID: "2", UserID: "u", Message: "elsewhere"}))

	chats, err := db.ListRecentChats(ctx, "1", 3)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, "m2", chats[0].Message)
	assert.Equal(t, "m3", chats[1].Message)
	assert.Equal(t, "m4", chats[2].Message)
	assert.Less(t, chats[0].ID, chats[2].ID)
}
