package websocket

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"drawroom/internal/auth"
	"drawroom/internal/models"
	"drawroom/pkg/logger"
)

var (
	ErrAlreadyRegistered = errors.New("connection already registered")
	ErrUnauthenticated   = errors.New("connection is not authenticated")
)

// Connection is a live bidirectional message channel to one client.
type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

type SessionID string

type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
)

func (s SessionState) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// session is the authenticated state bound to one connection. It is only
// touched with the registry lock held.
type session struct {
	conn   Connection
	userID string
	rooms  map[models.RoomID]struct{}
}

// Registry maps live connections to their sessions and room memberships.
type Registry struct {
	mu       sync.RWMutex
	verifier auth.TokenVerifier
	sessions map[string]*session
}

func NewRegistry(verifier auth.TokenVerifier) *Registry {
	return &Registry{
		verifier: verifier,
		sessions: make(map[string]*session),
	}
}

// Register verifies token and binds a new session to conn. On any failure the
// connection is closed before returning.
func (r *Registry) Register(conn Connection, token string) (SessionID, error) {
	userID, err := r.verifier.Verify(token)
	if err != nil {
		conn.Close()
		return "", err
	}

	r.mu.Lock()
	if _, exists := r.sessions[conn.ID()]; exists {
		r.mu.Unlock()
		conn.Close()
		return "", fmt.Errorf("%w: %s", ErrAlreadyRegistered, conn.ID())
	}
	r.sessions[conn.ID()] = &session{
		conn:   conn,
		userID: userID,
		rooms:  make(map[models.RoomID]struct{}),
	}
	count := len(r.sessions)
	r.mu.Unlock()

	logger.Info("session registered", logger.Conn(conn.ID()), logger.User(userID), "sessions", count)
	return SessionID(conn.ID()), nil
}

// Unregister removes the session of conn and returns the rooms it had joined.
// Only the first call for a connection reports ok.
func (r *Registry) Unregister(conn Connection) (userID string, rooms []models.RoomID, ok bool) {
	r.mu.Lock()
	s, exists := r.sessions[conn.ID()]
	if exists {
		delete(r.sessions, conn.ID())
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if !exists {
		return "", nil, false
	}

	logger.Info("session unregistered", logger.Conn(conn.ID()), logger.User(s.userID), "sessions", count)
	return s.userID, sortedRooms(s.rooms), true
}

func (r *Registry) State(conn Connection) SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.sessions[conn.ID()]; ok {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

func (r *Registry) UserID(conn Connection) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[conn.ID()]
	if !ok {
		return "", false
	}
	return s.userID, true
}

// Join adds roomID to the membership set. added is false when the connection
// was already a member.
func (r *Registry) Join(conn Connection, roomID models.RoomID) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[conn.ID()]
	if !ok {
		return false, ErrUnauthenticated
	}
	if _, member := s.rooms[roomID]; member {
		return false, nil
	}
	s.rooms[roomID] = struct{}{}
	return true, nil
}

// Leave removes roomID from the membership set. removed is false when the
// connection was not a member.
func (r *Registry) Leave(conn Connection, roomID models.RoomID) (removed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[conn.ID()]
	if !ok {
		return false, ErrUnauthenticated
	}
	if _, member := s.rooms[roomID]; !member {
		return false, nil
	}
	delete(s.rooms, roomID)
	return true, nil
}

func (r *Registry) IsMember(conn Connection, roomID models.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[conn.ID()]
	if !ok {
		return false
	}
	_, member := s.rooms[roomID]
	return member
}

// Rooms returns the joined rooms of conn in lexical order.
func (r *Registry) Rooms(conn Connection) []models.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[conn.ID()]
	if !ok {
		return nil
	}
	return sortedRooms(s.rooms)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func sortedRooms(set map[models.RoomID]struct{}) []models.RoomID {
	rooms := make([]models.RoomID, 0, len(set))
	for id := range set {
		rooms = append(rooms, id)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })
	return rooms
}
