package models

type FrameType string

const (
	FrameJoinRoom  FrameType = "JOIN_ROOM"
	FrameLeaveRoom FrameType = "LEAVE_ROOM"
	FrameChat      FrameType = "CHAT"
	FrameError     FrameType = "ERROR"
)

// InboundFrame is the raw envelope a client sends. Pointer fields tell a
// missing field apart from an empty one.
type InboundFrame struct {
	Type    FrameType `json:"type"`
	RoomID  *RoomID   `json:"roomId,omitempty"`
	Message *string   `json:"message,omitempty"`
	ID      string    `json:"id,omitempty"`
}

// ChatFrame is broadcast to every member of a room.
type ChatFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
	RoomID  RoomID    `json:"roomId"`
	ID      string    `json:"id,omitempty"`
}

type ErrorCode string

const (
	ErrorUnparseableFrame ErrorCode = "UNPARSEABLE_FRAME"
	ErrorUnknownType      ErrorCode = "UNKNOWN_TYPE"
	ErrorMissingField     ErrorCode = "MISSING_FIELD"
)

// ErrorFrame is sent only to the connection whose frame was rejected.
type ErrorFrame struct {
	Type    FrameType `json:"type"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
