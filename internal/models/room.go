package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Room struct {
	ID        int       `json:"id"`
	Slug      string    `json:"slug"`
	AdminID   string    `json:"adminId"`
	CreatedAt time.Time `json:"created_at"`
}

// Chat is one persisted room event. Message is the opaque payload as it was
// broadcast (a serialized shape or chat text).
type Chat struct {
	ID        int64     `json:"id"`
	RoomID    RoomID    `json:"roomId"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	EventID   string    `json:"eventId,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ActiveUser struct {
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"last_seen"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}
