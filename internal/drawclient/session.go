package drawclient

import (
	"context"
	"fmt"

	"drawroom/internal/models"
	"drawroom/internal/scene"
	"drawroom/pkg/logger"
)

// Sync joins the engine's room and then replays its history. Joining first
// narrows the window for missed broadcasts but does not close it: JOIN_ROOM is
// not acknowledged and history is written after fan-out, so an event sent
// around the join can be in neither. Overlaps are dropped by event id.
func Sync(ctx context.Context, c *Client, engine *scene.Engine) error {
	if err := c.Join(engine.RoomID()); err != nil {
		return fmt.Errorf("join room %s: %w", engine.RoomID(), err)
	}
	if _, err := engine.Load(ctx); err != nil {
		return err
	}
	return nil
}

// Draw appends shape locally and publishes it.
func Draw(c *Client, engine *scene.Engine, shape scene.Shape) error {
	frame, err := engine.AppendLocal(shape)
	if err != nil {
		return err
	}
	return c.Publish(frame)
}

// Apply returns a Listen handler feeding broadcasts into engine.
func Apply(engine *scene.Engine) func(models.ChatFrame) {
	return func(frame models.ChatFrame) {
		if _, err := engine.ApplyIncoming(frame); err != nil {
			logger.Warn("ignoring undrawable event", logger.Room(frame.RoomID.String()), logger.Event(frame.ID), logger.Err(err))
		}
	}
}
