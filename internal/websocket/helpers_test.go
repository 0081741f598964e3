package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"drawroom/internal/auth"
	"drawroom/internal/models"

	"github.com/stretchr/testify/require"
)

type mockConn struct {
	id       string
	received [][]byte
	closed   bool
	sendErr  error
	mu       sync.Mutex
}

func newMockConn(id string) *mockConn {
	return &mockConn{id: id}
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) getReceived() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.received))
	copy(out, m.received)
	return out
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) chats(t *testing.T) []models.ChatFrame {
	t.Helper()
	var frames []models.ChatFrame
	for _, raw := range m.getReceived() {
		var f models.ChatFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		if f.Type == models.FrameChat {
			frames = append(frames, f)
		}
	}
	return frames
}

// staticVerifier accepts "token-<user>" and rejects everything else.
type staticVerifier struct{}

func (staticVerifier) Verify(token string) (string, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", &auth.AuthError{Kind: auth.ErrInvalidSignature, Err: errors.New("unknown token")}
	}
	return token[len(prefix):], nil
}

type recordingRecorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingRecorder) Record(ev models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingRecorder) get() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Event, len(r.events))
	copy(out, r.events)
	return out
}

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)
