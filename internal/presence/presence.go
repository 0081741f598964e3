package presence

import (
	"context"

	"drawroom/internal/models"
)

// Store tracks which users currently have a connection joined to a room.
// A user may be present through several connections at once. Entries expire
// unless Touch is called for them while the connection stays joined.
type Store interface {
	Join(ctx context.Context, roomID models.RoomID, userID, connID string) error
	Touch(ctx context.Context, roomID models.RoomID, userID, connID string) error
	Leave(ctx context.Context, roomID models.RoomID, userID, connID string) error
	Online(ctx context.Context, roomID models.RoomID) ([]models.ActiveUser, error)
}

// Noop is used when no Redis is configured.
type Noop struct{}

func (Noop) Join(context.Context, models.RoomID, string, string) error  { return nil }
func (Noop) Touch(context.Context, models.RoomID, string, string) error { return nil }
func (Noop) Leave(context.Context, models.RoomID, string, string) error { return nil }

func (Noop) Online(context.Context, models.RoomID) ([]models.ActiveUser, error) {
	return []models.ActiveUser{}, nil
}
