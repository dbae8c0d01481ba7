package infrastructure

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"project_navbat/internal/entities"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 128
)

// wsConn is the slice of *websocket.Conn the connection wrapper needs;
// tests substitute fakes.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// DashboardConn wraps one dashboard websocket and serializes outbound
// writes through a buffered channel, so delivery order per connection
// equals publish order.
type DashboardConn struct {
	ID string

	ws    wsConn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

func NewDashboardConn(ws wsConn) *DashboardConn {
	return &DashboardConn{
		ID:    uuid.NewString(),
		ws:    ws,
		send:  make(chan []byte, sendBuffer),
		close: make(chan struct{}),
	}
}

// Start launches the write loop. Call exactly once per connection.
func (c *DashboardConn) Start() {
	go c.writeLoop()
}

// Enqueue queues payload for delivery. A slow client whose buffer fills up
// is closed to keep backpressure bounded.
func (c *DashboardConn) Enqueue(payload []byte) error {
	select {
	case <-c.close:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close terminates the connection and stops the write loop. Safe to call
// more than once.
func (c *DashboardConn) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.close)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *DashboardConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

func (c *DashboardConn) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *DashboardConn) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// Hub holds the currently-open dashboard connections and fans queue events
// out to all of them. Events carry the owner id; the hub does not filter by
// tenant membership server-side, visibility restriction is left to the
// dashboard client.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*DashboardConn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*DashboardConn)}
}

// Register adds a connection and starts its write loop. Registering the
// same connection twice is a no-op.
func (h *Hub) Register(c *DashboardConn) {
	h.mu.Lock()
	_, exists := h.conns[c.ID]
	if !exists {
		h.conns[c.ID] = c
	}
	h.mu.Unlock()
	if !exists {
		c.Start()
	}
}

// Unregister removes a connection. Safe for connections that were never
// registered or were already removed.
func (h *Hub) Unregister(c *DashboardConn) {
	h.mu.Lock()
	delete(h.conns, c.ID)
	h.mu.Unlock()
	c.Close(websocket.CloseNormalClosure, "unregistered")
}

// ConnCount reports the number of registered connections.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Publish fans the event out to every registered connection. The set is
// snapshotted first so registration churn during fan-out is safe; a failed
// enqueue is logged and does not affect other deliveries.
func (h *Hub) Publish(ev entities.QueueEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[hub] marshal event: %v", err)
		return
	}

	h.mu.Lock()
	snapshot := make([]*DashboardConn, 0, len(h.conns))
	for _, c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	for _, c := range snapshot {
		if err := c.Enqueue(payload); err != nil {
			log.Printf("[hub] dropped event for connection %s: %v", c.ID, err)
		}
	}
}

// Shutdown closes every registered connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]*DashboardConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]*DashboardConn)
	h.mu.Unlock()

	for _, c := range conns {
		c.Close(websocket.CloseGoingAway, "hub shutdown")
	}
}
