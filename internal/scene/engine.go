package scene

import (
	"context"
	"fmt"
	"sync"

	"drawroom/internal/models"
	"drawroom/pkg/logger"

	"github.com/google/uuid"
)

// HistoryLimit is the number of persisted events replayed on load.
const HistoryLimit = 50

// HistorySource lists the most recent persisted events of a room, oldest first.
type HistorySource interface {
	ListRecentEvents(ctx context.Context, roomID models.RoomID, limit int) ([]models.Chat, error)
}

// Renderer redraws the whole scene.
type Renderer interface {
	Render(shapes []Shape) error
}

type entry struct {
	id    string
	shape Shape
}

// Engine keeps the local scene of one room in step with its event log.
type Engine struct {
	roomID   models.RoomID
	source   HistorySource
	renderer Renderer

	mu      sync.Mutex
	entries []entry
	applied map[string]struct{}
}

func NewEngine(roomID models.RoomID, source HistorySource, renderer Renderer) *Engine {
	return &Engine{
		roomID:   roomID,
		source:   source,
		renderer: renderer,
		applied:  make(map[string]struct{}),
	}
}

func (e *Engine) RoomID() models.RoomID { return e.roomID }

// Load seeds the scene from history. Shapes applied before the load completes
// and absent from history are kept after the replayed ones. Entries that do not
// decode are skipped.
func (e *Engine) Load(ctx context.Context) ([]Shape, error) {
	events, err := e.source.ListRecentEvents(ctx, e.roomID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history for room %s: %w", e.roomID, err)
	}

	replayed := make([]entry, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if ev.EventID != "" {
			if _, dup := seen[ev.EventID]; dup {
				continue
			}
		}
		shape, err := Decode(ev.Message)
		if err != nil {
			logger.Warn("skipping undecodable history entry", logger.Room(e.roomID.String()), logger.Event(ev.EventID), logger.Err(err))
			continue
		}
		if ev.EventID != "" {
			seen[ev.EventID] = struct{}{}
		}
		replayed = append(replayed, entry{id: ev.EventID, shape: shape})
	}

	e.mu.Lock()
	for _, local := range e.entries {
		if _, ok := seen[local.id]; ok && local.id != "" {
			continue
		}
		replayed = append(replayed, local)
	}
	e.entries = replayed
	e.applied = make(map[string]struct{}, len(replayed))
	for _, en := range replayed {
		if en.id != "" {
			e.applied[en.id] = struct{}{}
		}
	}
	shapes := e.snapshot()
	e.render(shapes)
	e.mu.Unlock()

	return shapes, nil
}

// ApplyIncoming appends the shape carried by a broadcast frame. It reports
// false for frames of other rooms, non-chat frames and ids already applied,
// such as the echo of a local append.
func (e *Engine) ApplyIncoming(frame models.ChatFrame) (bool, error) {
	if frame.Type != models.FrameChat || frame.RoomID != e.roomID {
		return false, nil
	}

	shape, err := Decode(frame.Message)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	if frame.ID != "" {
		if _, ok := e.applied[frame.ID]; ok {
			e.mu.Unlock()
			return false, nil
		}
		e.applied[frame.ID] = struct{}{}
	}
	e.entries = append(e.entries, entry{id: frame.ID, shape: shape})
	e.render(e.snapshot())
	e.mu.Unlock()

	return true, nil
}

// AppendLocal adds shape to the scene right away and returns the frame to
// publish for it. The frame id lets ApplyIncoming recognise the echo.
func (e *Engine) AppendLocal(shape Shape) (models.ChatFrame, error) {
	payload, err := Encode(shape)
	if err != nil {
		return models.ChatFrame{}, fmt.Errorf("encode %s: %w", shape.Type(), err)
	}
	id := uuid.NewString()

	e.mu.Lock()
	e.applied[id] = struct{}{}
	e.entries = append(e.entries, entry{id: id, shape: shape})
	e.render(e.snapshot())
	e.mu.Unlock()

	return models.ChatFrame{
		Type:    models.FrameChat,
		Message: payload,
		RoomID:  e.roomID,
		ID:      id,
	}, nil
}

// Shapes returns a copy of the scene in append order.
func (e *Engine) Shapes() []Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() []Shape {
	out := make([]Shape, len(e.entries))
	for i, en := range e.entries {
		out[i] = en.shape
	}
	return out
}

// render runs with e.mu held so frames are drawn in scene order.
func (e *Engine) render(shapes []Shape) {
	if e.renderer == nil {
		return
	}
	if err := e.renderer.Render(shapes); err != nil {
		logger.Warn("render failed", logger.Room(e.roomID.String()), logger.Err(err))
	}
}
