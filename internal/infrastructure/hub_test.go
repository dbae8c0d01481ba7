package infrastructure

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_navbat/internal/entities"
)

type fakeWS struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeWS) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data != nil {
		f.frames = append(f.frames, data)
	}
	return nil
}

func (f *fakeWS) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (f *fakeWS) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeWS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWS) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func (f *fakeWS) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func waitForFrames(t *testing.T, ws *fakeWS, n int) [][]byte {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(ws.received()) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return ws.received()
}

func TestHubPublishFansOutToAllConnections(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	ws1, ws2 := &fakeWS{}, &fakeWS{}
	hub.Register(NewDashboardConn(ws1))
	hub.Register(NewDashboardConn(ws2))

	hub.Publish(entities.StatusEvent(1, 42, entities.StatusCalled))

	for _, ws := range []*fakeWS{ws1, ws2} {
		frames := waitForFrames(t, ws, 1)
		var ev entities.QueueEvent
		require.NoError(t, json.Unmarshal(frames[0], &ev))
		assert.Equal(t, entities.EventUpdateQueue, ev.Event)
		assert.Equal(t, 1, ev.OwnerID)
		assert.Equal(t, 42, ev.BookingID)
		assert.Equal(t, entities.StatusCalled, ev.Status)
	}
}

func TestHubDeliveryOrderPerConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	ws := &fakeWS{}
	hub.Register(NewDashboardConn(ws))

	for i := 1; i <= 20; i++ {
		hub.Publish(entities.StatusEvent(1, i, entities.StatusCalled))
	}

	frames := waitForFrames(t, ws, 20)
	for i, frame := range frames[:20] {
		var ev entities.QueueEvent
		require.NoError(t, json.Unmarshal(frame, &ev))
		assert.Equal(t, i+1, ev.BookingID)
	}
}

func TestHubRegisterIdempotent(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	conn := NewDashboardConn(&fakeWS{})
	hub.Register(conn)
	hub.Register(conn)

	assert.Equal(t, 1, hub.ConnCount())
}

func TestHubUnregisterIsSafe(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	ws := &fakeWS{}
	conn := NewDashboardConn(ws)
	hub.Register(conn)
	hub.Unregister(conn)
	hub.Unregister(conn)

	// Never-registered connections are fine too.
	hub.Unregister(NewDashboardConn(&fakeWS{}))

	assert.Equal(t, 0, hub.ConnCount())
	assert.True(t, ws.isClosed())
}

func TestHubPublishAfterDisconnectDoesNotBlock(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	stale := NewDashboardConn(&fakeWS{})
	live := &fakeWS{}
	hub.Register(stale)
	hub.Register(NewDashboardConn(live))
	hub.Unregister(stale)

	hub.Publish(entities.StatusEvent(2, 7, entities.StatusDone))

	frames := waitForFrames(t, live, 1)
	assert.Len(t, frames, 1)
}

func TestHubConcurrentPublishAndChurn(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Publish(entities.StatusEvent(1, j, entities.StatusWaiting))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				conn := NewDashboardConn(&fakeWS{})
				hub.Register(conn)
				hub.Unregister(conn)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.ConnCount())
}

func TestHubShutdownClosesConnections(t *testing.T) {
	hub := NewHub()
	ws := &fakeWS{}
	hub.Register(NewDashboardConn(ws))

	hub.Shutdown()

	assert.Equal(t, 0, hub.ConnCount())
	assert.True(t, ws.isClosed())
}
