package models

import "time"

type EventKind int

const (
	EventJoinRoom EventKind = iota + 1
	EventLeaveRoom
	EventPublish
)

func (k EventKind) String() string {
	switch k {
	case EventJoinRoom:
		return "join_room"
	case EventLeaveRoom:
		return "leave_room"
	case EventPublish:
		return "publish"
	default:
		return "unknown"
	}
}

// Event is an accepted, immutable protocol event. Payload is only set for
// publishes and is never interpreted by the server.
type Event struct {
	Kind     EventKind
	ID       string
	RoomID   RoomID
	Payload  string
	ConnID   string
	UserID   string
	Received time.Time
}

func (e Event) ChatFrame() ChatFrame {
	return ChatFrame{
		Type:    FrameChat,
		Message: e.Payload,
		RoomID:  e.RoomID,
		ID:      e.ID,
	}
}
