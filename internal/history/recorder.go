package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"drawroom/internal/database"
	"drawroom/internal/models"
	"drawroom/pkg/logger"
)

var (
	ErrRecorderClosed = errors.New("recorder closed")
	ErrQueueFull      = errors.New("recorder queue full")
)

// Recorder persists published events in the order they are handed to it,
// using a single writer goroutine. Recording never blocks the caller.
type Recorder struct {
	store   database.ChatRepository
	queue   chan models.Event
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewRecorder(store database.ChatRepository, buffer int, timeout time.Duration) *Recorder {
	r := &Recorder{
		store:   store,
		queue:   make(chan models.Event, buffer),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) Record(ev models.Event) error {
	if ev.Kind != models.EventPublish {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}

	select {
	case r.queue <- ev:
		return nil
	default:
		logger.Warn("history queue full, dropping event", logger.Room(ev.RoomID.String()), logger.Event(ev.ID))
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for ev := range r.queue {
		r.save(ev)
	}
}

func (r *Recorder) save(ev models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	chat := &models.Chat{
		RoomID:  ev.RoomID,
		UserID:  ev.UserID,
		Message: ev.Payload,
		EventID: ev.ID,
	}
	if err := r.store.SaveChat(ctx, chat); err != nil {
		logger.Error("failed to persist event", logger.Room(ev.RoomID.String()), logger.Event(ev.ID), logger.Err(err))
	}
}
