package drawclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"drawroom/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// StatusError is a non-2xx answer from the HTTP API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Message)
}

// API talks to the account, room and history endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (a *API) Signin(ctx context.Context, email, password string) (string, error) {
	var resp models.SigninResponse
	err := a.do(ctx, http.MethodPost, "/signin", "", models.SigninRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", fmt.Errorf("signin: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("signin: empty token in response")
	}
	return resp.Token, nil
}

func (a *API) CreateRoom(ctx context.Context, token, name string) (models.RoomID, error) {
	var resp struct {
		RoomID int `json:"roomId"`
	}
	if err := a.do(ctx, http.MethodPost, "/room", token, models.CreateRoomRequest{Name: name}, &resp); err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	return models.RoomID(strconv.Itoa(resp.RoomID)), nil
}

func (a *API) RoomBySlug(ctx context.Context, slug string) (models.RoomID, error) {
	var resp struct {
		RoomID int `json:"roomId"`
	}
	err := a.do(ctx, http.MethodGet, "/room/"+url.PathEscape(slug), "", nil, &resp)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrRoomNotFound, slug)
	}
	if err != nil {
		return "", fmt.Errorf("get room: %w", err)
	}
	return models.RoomID(strconv.Itoa(resp.RoomID)), nil
}

// ListRecentEvents fetches room history, oldest first, keeping at most the
// newest limit entries.
func (a *API) ListRecentEvents(ctx context.Context, roomID models.RoomID, limit int) ([]models.Chat, error) {
	var resp struct {
		Messages []models.Chat `json:"messages"`
	}
	if err := a.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(roomID.String()), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	chats := resp.Messages
	if limit > 0 && len(chats) > limit {
		chats = chats[len(chats)-limit:]
	}
	return chats, nil
}

func (a *API) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &StatusError{Status: resp.StatusCode, Message: msg.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
