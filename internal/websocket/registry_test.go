package websocket

import (
	"testing"

	"drawroom/internal/auth"
	"drawroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantErr   error
		wantState SessionState
	}{
		{name: "valid token", token: "token-alice", wantState: StateAuthenticated},
		{name: "invalid token", token: "forged", wantErr: auth.ErrInvalidSignature, wantState: StateUnauthenticated},
		{name: "empty token", token: "", wantErr: auth.ErrInvalidSignature, wantState: StateUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(staticVerifier{})
			conn := newMockConn("c1")

			id, err := r.Register(conn, tt.token)

			assert.Equal(t, tt.wantState, r.State(conn))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, id)
				assert.True(t, conn.isClosed())
				assert.Empty(t, conn.getReceived())
				assert.Zero(t, r.Count())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, SessionID("c1"), id)
			assert.False(t, conn.isClosed())
			assert.Empty(t, r.Rooms(conn))
			userID, ok := r.UserID(conn)
			assert.True(t, ok)
			assert.Equal(t, "alice", userID)
		})
	}
}

func TestRegistry_RegisterTwiceRejected(t *testing.T) {
	r := NewRegistry(staticVerifier{})
	conn := newMockConn("c1")

	_, err := r.Register(conn, "token-alice")
	require.NoError(t, err)

	_, err = r.Register(conn, "token-alice")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.True(t, conn.isClosed())
}

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	r := NewRegistry(staticVerifier{})
	conn := newMockConn("c1")
	_, err := r.Register(conn, "token-alice")
	require.NoError(t, err)

	added, err := r.Join(conn, "1")
	require.NoError(t, err)
	assert.True(t, added)
	once := r.Rooms(conn)

	added, err = r.Join(conn, "1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, once, r.Rooms(conn))
}

func TestRegistry_LeaveRestoresPreJoinState(t *testing.T) {
	r := NewRegistry(staticVerifier{})
	conn := newMockConn("c1")
	_, err := r.Register(conn, "token-alice")
	require.NoError(t, err)

	_, err = r.Join(conn, "keep")
	require.NoError(t, err)
	before := r.Rooms(conn)

	_, err = r.Join(conn, "1")
	require.NoError(t, err)
	removed, err := r.Leave(conn, "1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, before, r.Rooms(conn))

	removed, err = r.Leave(conn, "never-joined")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, before, r.Rooms(conn))
}

func TestRegistry_UnregisterOnce(t *testing.T) {
	r := NewRegistry(staticVerifier{})
	conn := newMockConn("c1")
	_, err := r.Register(conn, "token-alice")
	require.NoError(t, err)
	_, _ = r.Join(conn, "2")
	_, _ = r.Join(conn, "1")

	userID, rooms, ok := r.Unregister(conn)
	require.True(t, ok)
	assert.Equal(t, "alice", userID)
	assert.Equal(t, []models.RoomID{"1", "2"}, rooms)
	assert.Equal(t, StateUnauthenticated, r.State(conn))
	assert.False(t, r.IsMember(conn, "1"))

	_, rooms, ok = r.Unregister(conn)
	assert.False(t, ok)
	assert.Empty(t, rooms)
}

func TestRegistry_MembershipRequiresSession(t *testing.T) {
	r := NewRegistry(staticVerifier{})
	conn := newMockConn("ghost")

	_, err := r.Join(conn, "1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = r.Leave(conn, "1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, r.Rooms(conn))
}
