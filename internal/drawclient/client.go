package drawclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"drawroom/internal/models"
	"drawroom/pkg/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client is a room connection to the broadcast server.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	once    sync.Once
}

// WebSocketURL turns an http(s) base URL into the authenticated /ws endpoint.
func WebSocketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

func Dial(ctx context.Context, baseURL, token string) (*Client, error) {
	target, err := WebSocketURL(baseURL, token)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", baseURL, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Join(roomID models.RoomID) error {
	return c.write(map[string]any{"type": models.FrameJoinRoom, "roomId": roomID})
}

func (c *Client) Leave(roomID models.RoomID) error {
	return c.write(map[string]any{"type": models.FrameLeaveRoom, "roomId": roomID})
}

// Publish sends a chat frame, usually one built by scene.Engine.AppendLocal.
func (c *Client) Publish(frame models.ChatFrame) error {
	frame.Type = models.FrameChat
	return c.write(frame)
}

func (c *Client) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Listen delivers every broadcast to handle until ctx ends or the connection
// drops. Error frames from the server are logged and skipped.
func (c *Client) Listen(ctx context.Context, handle func(models.ChatFrame)) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var head struct {
			Type models.FrameType `json:"type"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			logger.Warn("unreadable frame from server", logger.Err(err))
			continue
		}

		switch head.Type {
		case models.FrameChat:
			var frame models.ChatFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				logger.Warn("unreadable chat frame", logger.Err(err))
				continue
			}
			handle(frame)
		case models.FrameError:
			var frame models.ErrorFrame
			if err := json.Unmarshal(data, &frame); err == nil {
				logger.Warn("server rejected frame", "code", string(frame.Code), "message", frame.Message)
			}
		default:
			logger.Debug("ignoring frame", "type", string(head.Type))
		}
	}
}

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}
