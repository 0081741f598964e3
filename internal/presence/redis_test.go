package presence

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestCollapse(t *testing.T) {
	entries := []redis.Z{
		{Score: 100, Member: "u2|c1"},
		{Score: 200, Member: "u1|c1"},
		{Score: 300, Member: "u1|c2"},
		{Score: 400, Member: 12},
	}

	users := collapse(entries)

	if assert.Len(t, users, 2) {
		assert.Equal(t, "u1", users[0].UserID)
		assert.Equal(t, int64(300), users[0].LastSeen.Unix())
		assert.Equal(t, "u2", users[1].UserID)
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "presence:room:7", roomKey("7"))
	assert.Equal(t, "u1|c1", member("u1", "c1"))
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	ctx := context.Background()

	assert.NoError(t, s.Join(ctx, "1", "u", "c"))
	assert.NoError(t, s.Leave(ctx, "1", "u", "c"))
	users, err := s.Online(ctx, "1")
	assert.NoError(t, err)
	assert.Empty(t, users)
}
