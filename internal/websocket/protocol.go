package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drawroom/internal/models"
	"drawroom/internal/presence"
	"drawroom/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "drawroom/websocket"

// Router computes recipient sets and delivers events.
type Router interface {
	Join(roomID models.RoomID, conn Connection)
	Leave(roomID models.RoomID, conn Connection)
	Publish(ev models.Event)
}

// ProtocolError rejects a single frame. It is reported to the sender and never
// closes the connection.
type ProtocolError struct {
	Code    models.ErrorCode
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ParseFrame decodes and validates one inbound envelope.
func ParseFrame(data []byte) (models.InboundFrame, error) {
	var frame models.InboundFrame

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&frame); err != nil {
		return frame, &ProtocolError{Code: models.ErrorUnparseableFrame, Message: err.Error()}
	}
	if dec.More() {
		return frame, &ProtocolError{Code: models.ErrorUnparseableFrame, Message: "trailing data after frame"}
	}

	switch frame.Type {
	case "":
		return frame, &ProtocolError{Code: models.ErrorUnparseableFrame, Message: "missing type"}
	case models.FrameJoinRoom, models.FrameLeaveRoom:
		if frame.RoomID == nil || *frame.RoomID == "" {
			return frame, &ProtocolError{Code: models.ErrorMissingField, Message: "roomId is required"}
		}
	case models.FrameChat:
		if frame.RoomID == nil || *frame.RoomID == "" {
			return frame, &ProtocolError{Code: models.ErrorMissingField, Message: "roomId is required"}
		}
		if frame.Message == nil {
			return frame, &ProtocolError{Code: models.ErrorMissingField, Message: "message is required"}
		}
	default:
		return frame, &ProtocolError{Code: models.ErrorUnknownType, Message: fmt.Sprintf("unknown type %q", frame.Type)}
	}
	return frame, nil
}

// Protocol interprets inbound frames for authenticated connections.
type Protocol struct {
	registry *Registry
	router   Router
	presence presence.Store
	tracer   trace.Tracer
	now      func() time.Time
}

func NewProtocol(registry *Registry, router Router, store presence.Store) *Protocol {
	if store == nil {
		store = presence.Noop{}
	}
	return &Protocol{
		registry: registry,
		router:   router,
		presence: store,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
}

// Handle processes one frame. A non-nil error is fatal for the connection:
// only frames from unregistered connections produce one.
func (p *Protocol) Handle(ctx context.Context, conn Connection, data []byte) error {
	userID, ok := p.registry.UserID(conn)
	if !ok {
		return ErrUnauthenticated
	}

	frame, err := ParseFrame(data)
	if err != nil {
		p.reject(conn, err)
		return nil
	}

	roomID := *frame.RoomID
	switch frame.Type {
	case models.FrameJoinRoom:
		added, err := p.registry.Join(conn, roomID)
		if err != nil {
			return err
		}
		if added {
			p.router.Join(roomID, conn)
			if err := p.presence.Join(ctx, roomID, userID, conn.ID()); err != nil {
				logger.Warn("presence join failed", logger.Room(roomID.String()), logger.Err(err))
			}
		}

	case models.FrameLeaveRoom:
		removed, err := p.registry.Leave(conn, roomID)
		if err != nil {
			return err
		}
		if removed {
			p.router.Leave(roomID, conn)
			if err := p.presence.Leave(ctx, roomID, userID, conn.ID()); err != nil {
				logger.Warn("presence leave failed", logger.Room(roomID.String()), logger.Err(err))
			}
		}

	case models.FrameChat:
		p.publish(ctx, conn, userID, frame)
	}
	return nil
}

func (p *Protocol) publish(ctx context.Context, conn Connection, userID string, frame models.InboundFrame) {
	roomID := *frame.RoomID
	if !p.registry.IsMember(conn, roomID) {
		logger.Debug("chat from non-member dropped", logger.Room(roomID.String()), logger.Conn(conn.ID()))
		return
	}

	id := frame.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, span := p.tracer.Start(ctx, "room.publish", trace.WithAttributes(
		attribute.String("room.id", roomID.String()),
		attribute.String("event.id", id),
		attribute.String("user.id", userID),
	))
	defer span.End()

	p.router.Publish(models.Event{
		Kind:     models.EventPublish,
		ID:       id,
		RoomID:   roomID,
		Payload:  *frame.Message,
		ConnID:   conn.ID(),
		UserID:   userID,
		Received: p.now(),
	})
}

func (p *Protocol) reject(conn Connection, err error) {
	perr, ok := err.(*ProtocolError)
	if !ok {
		perr = &ProtocolError{Code: models.ErrorUnparseableFrame, Message: err.Error()}
	}
	logger.Debug("frame rejected", logger.Conn(conn.ID()), "code", string(perr.Code), logger.Err(perr))

	data, mErr := json.Marshal(models.ErrorFrame{Type: models.FrameError, Code: perr.Code, Message: perr.Message})
	if mErr != nil {
		return
	}
	if sErr := conn.Send(data); sErr != nil {
		logger.Debug("error frame not delivered", logger.Conn(conn.ID()), logger.Err(sErr))
	}
}

// Touch marks the user of conn as still present in every room it has joined.
func (p *Protocol) Touch(ctx context.Context, conn Connection) {
	userID, ok := p.registry.UserID(conn)
	if !ok {
		return
	}
	for _, roomID := range p.registry.Rooms(conn) {
		if err := p.presence.Touch(ctx, roomID, userID, conn.ID()); err != nil {
			logger.Warn("presence refresh failed", logger.Room(roomID.String()), logger.Err(err))
		}
	}
}

// Disconnect unregisters conn and removes it from every room it had joined.
// It is safe to call more than once; only the first call has an effect.
func (p *Protocol) Disconnect(ctx context.Context, conn Connection) {
	userID, rooms, ok := p.registry.Unregister(conn)
	if !ok {
		return
	}
	for _, roomID := range rooms {
		p.router.Leave(roomID, conn)
		if err := p.presence.Leave(ctx, roomID, userID, conn.ID()); err != nil {
			logger.Warn("presence leave failed", logger.Room(roomID.String()), logger.Err(err))
		}
	}
}
