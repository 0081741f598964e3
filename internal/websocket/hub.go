package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"drawroom/internal/models"
	"drawroom/pkg/logger"
)

// Recorder receives every event after it has been fanned out.
type Recorder interface {
	Record(ev models.Event) error
}

// Hub is the serialization point of one room: membership changes and
// broadcasts are applied by a single goroutine in arrival order.
type Hub struct {
	roomID       models.RoomID
	members      map[string]Connection
	register     chan Connection
	unregister   chan Connection
	broadcast    chan models.Event
	countReq     chan chan int
	idleReq      chan idleCheck
	quit         chan struct{}
	done         chan struct{}
	lastActivity time.Time
	recorder     Recorder
}

type idleCheck struct {
	timeout time.Duration
	reply   chan bool
}

func NewHub(roomID models.RoomID, recorder Recorder) *Hub {
	return &Hub{
		roomID:       roomID,
		members:      make(map[string]Connection),
		register:     make(chan Connection),
		unregister:   make(chan Connection),
		broadcast:    make(chan models.Event),
		countReq:     make(chan chan int),
		idleReq:      make(chan idleCheck),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		lastActivity: time.Now(),
		recorder:     recorder,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			return

		case conn := <-h.register:
			h.members[conn.ID()] = conn
			h.lastActivity = time.Now()
			logger.Debug("joined room", logger.Room(h.roomID.String()), logger.Conn(conn.ID()), "members", len(h.members))

		case conn := <-h.unregister:
			if _, ok := h.members[conn.ID()]; ok {
				delete(h.members, conn.ID())
				h.lastActivity = time.Now()
				logger.Debug("left room", logger.Room(h.roomID.String()), logger.Conn(conn.ID()), "members", len(h.members))
			}

		case ev := <-h.broadcast:
			h.lastActivity = time.Now()
			h.broadcastToAll(ev)

		case reply := <-h.countReq:
			reply <- len(h.members)

		case check := <-h.idleReq:
			if len(h.members) == 0 && time.Since(h.lastActivity) >= check.timeout {
				check.reply <- true
				return
			}
			check.reply <- false
		}
	}
}

// broadcastToAll delivers ev to every member, the sender included. A failed
// delivery only affects that recipient.
func (h *Hub) broadcastToAll(ev models.Event) {
	data, err := json.Marshal(ev.ChatFrame())
	if err != nil {
		logger.Error("failed to encode chat frame", logger.Room(h.roomID.String()), logger.Err(err))
		return
	}

	for id, conn := range h.members {
		if err := conn.Send(data); err != nil {
			logger.Debug("delivery skipped", logger.Room(h.roomID.String()), logger.Conn(id), logger.Err(err))
		}
	}

	if h.recorder != nil {
		if err := h.recorder.Record(ev); err != nil {
			logger.Debug("event not recorded", logger.Room(h.roomID.String()), logger.Event(ev.ID), logger.Err(err))
		}
	}
}

// The methods below return false once the hub has stopped.

func (h *Hub) join(conn Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(conn Connection) bool {
	select {
	case h.unregister <- conn:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) publish(ev models.Event) bool {
	select {
	case h.broadcast <- ev:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) count() int {
	reply := make(chan int, 1)
	select {
	case h.countReq <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// stopIfIdle stops the hub when it has no members and has been inactive for
// at least timeout. The check and the stop happen atomically in Run.
func (h *Hub) stopIfIdle(timeout time.Duration) bool {
	check := idleCheck{timeout: timeout, reply: make(chan bool, 1)}
	select {
	case h.idleReq <- check:
		return <-check.reply
	case <-h.done:
		return true
	}
}

func (h *Hub) shutdown() {
	select {
	case <-h.quit:
	default:
		close(h.quit)
	}
	<-h.done
}

// Manager routes events to room hubs, creating them on first join and
// reaping them once empty and idle.
type Manager struct {
	hubs        map[models.RoomID]*Hub
	mutex       sync.Mutex
	recorder    Recorder
	idleTimeout time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewManager(recorder Recorder, idleTimeout time.Duration) *Manager {
	return &Manager{
		hubs:        make(map[models.RoomID]*Hub),
		recorder:    recorder,
		idleTimeout: idleTimeout,
		stop:        make(chan struct{}),
	}
}

// StartCleanup reaps idle hubs every interval until Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.CleanupIdle()
			}
		}
	}()
}

func (m *Manager) getHub(roomID models.RoomID, create bool) *Hub {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	hub, exists := m.hubs[roomID]
	if !exists && create {
		hub = NewHub(roomID, m.recorder)
		m.hubs[roomID] = hub
		go hub.Run()
	}
	return hub
}

// Join adds conn to the room's recipient set.
func (m *Manager) Join(roomID models.RoomID, conn Connection) {
	for {
		if m.getHub(roomID, true).join(conn) {
			return
		}
		m.forget(roomID)
	}
}

// Leave removes conn from the room's recipient set.
func (m *Manager) Leave(roomID models.RoomID, conn Connection) {
	if hub := m.getHub(roomID, false); hub != nil {
		hub.leave(conn)
	}
}

// Publish fans ev out to every member of ev.RoomID, the sender included. It
// returns once the room's hub has accepted the event; delivery is best-effort.
func (m *Manager) Publish(ev models.Event) {
	if hub := m.getHub(ev.RoomID, false); hub != nil {
		hub.publish(ev)
	}
}

// Members reports how many connections are in the room.
func (m *Manager) Members(roomID models.RoomID) int {
	if hub := m.getHub(roomID, false); hub != nil {
		return hub.count()
	}
	return 0
}

// Stats returns the number of rooms with members and the total membership.
func (m *Manager) Stats() (rooms, members int) {
	m.mutex.Lock()
	hubs := make([]*Hub, 0, len(m.hubs))
	for _, hub := range m.hubs {
		hubs = append(hubs, hub)
	}
	m.mutex.Unlock()

	for _, hub := range hubs {
		if n := hub.count(); n > 0 {
			rooms++
			members += n
		}
	}
	return rooms, members
}

func (m *Manager) CleanupIdle() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for roomID, hub := range m.hubs {
		if hub.stopIfIdle(m.idleTimeout) {
			delete(m.hubs, roomID)
			logger.Debug("cleaned up idle hub", logger.Room(roomID.String()))
		}
	}
}

// forget drops a stopped hub from the table.
func (m *Manager) forget(roomID models.RoomID) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if hub, ok := m.hubs[roomID]; ok {
		select {
		case <-hub.done:
			delete(m.hubs, roomID)
		default:
		}
	}
}

// Stop shuts every hub down and ends the cleanup loop.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()

	m.mutex.Lock()
	defer m.mutex.Unlock()
	for roomID, hub := range m.hubs {
		hub.shutdown()
		delete(m.hubs, roomID)
	}
}
