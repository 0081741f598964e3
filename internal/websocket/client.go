package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"drawroom/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	ErrSendBufferFull   = errors.New("send buffer full")
	ErrConnectionClosed = errors.New("connection closed")
)

// Client is a Connection backed by a gorilla websocket.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	maxMessageSize int64

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(conn *websocket.Conn, sendBuffer int, maxMessageSize int64) *Client {
	return &Client{
		id:             uuid.NewString(),
		conn:           conn,
		send:           make(chan []byte, sendBuffer),
		maxMessageSize: maxMessageSize,
		done:           make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues data for the write pump without blocking.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

// Close drops the underlying network connection. Queued frames are discarded.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) Done() <-chan struct{} { return c.done }

// ReadPump feeds frames to the protocol until the connection fails, then
// unregisters it. It must be the only reader of the connection.
func (c *Client) ReadPump(ctx context.Context, protocol *Protocol) {
	defer func() {
		protocol.Disconnect(ctx, c)
		c.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		protocol.Touch(ctx, c)
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", logger.Conn(c.id), logger.Err(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if err := protocol.Handle(ctx, c, message); err != nil {
			logger.Warn("closing connection", logger.Conn(c.id), logger.Err(err))
			return
		}
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("websocket write error", logger.Conn(c.id), logger.Err(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
