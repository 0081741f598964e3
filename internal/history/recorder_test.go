package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"drawroom/internal/database"
	"drawroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingStore struct {
	*database.MemoryDB
	release chan struct{}
}

func (s *blockingStore) SaveChat(ctx context.Context, chat *models.Chat) error {
	<-s.release
	return s.MemoryDB.SaveChat(ctx, chat)
}

func publish(room models.RoomID, payload string) models.Event {
	return models.Event{Kind: models.EventPublish, ID: payload, RoomID: room, Payload: payload, UserID: "u1"}
}

func TestRecorder_PersistsInOrder(t *testing.T) {
	db := database.NewMemoryDB()
	r := NewRecorder(db, 16, time.Second)

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Record(publish("1", fmt.Sprintf("m%d", i))))
	}
	require.NoError(t, r.Close(context.Background()))

	chats, err := db.ListRecentChats(context.Background(), "1", 50)
	require.NoError(t, err)
	require.Len(t, chats, 10)
	for i, c := range chats {
		assert.Equal(t, fmt.Sprintf("m%d", i), c.Message)
		assert.Equal(t, c.Message, c.EventID)
		assert.Equal(t, "u1", c.UserID)
	}
}

func TestRecorder_IgnoresNonPublish(t *testing.T) {
	db := database.NewMemoryDB()
	r := NewRecorder(db, 4, time.Second)

	require.NoError(t, r.Record(models.Event{Kind: models.EventJoinRoom, RoomID: "1"}))
	require.NoError(t, r.Close(context.Background()))

	chats, err := db.ListRecentChats(context.Background(), "1", 50)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStore{MemoryDB: database.NewMemoryDB(), release: make(chan struct{})}
	r := NewRecorder(store, 1, time.Second)

	// The writer takes the first event and blocks; the second fills the buffer.
	require.NoError(t, r.Record(publish("1", "a")))
	require.Eventually(t, func() bool { return len(r.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, r.Record(publish("1", "b")))

	assert.ErrorIs(t, r.Record(publish("1", "c")), ErrQueueFull)

	close(store.release)
	require.NoError(t, r.Close(context.Background()))

	chats, err := store.ListRecentChats(context.Background(), "1", 50)
	require.NoError(t, err)
	assert.Len(t, chats, 2)
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	r := NewRecorder(database.NewMemoryDB(), 1, time.Second)
	require.NoError(t, r.Close(context.Background()))
	require.NoError(t, r.Close(context.Background()))

	assert.ErrorIs(t, r.Record(publish("1", "late")), ErrRecorderClosed)
}
