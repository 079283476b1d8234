package websocket

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m.Start(ctx)
	return m
}

// waitForClient blocks until the manager's registry holds exactly the given
// connection for the user. Register/Unregister are processed asynchronously by
// the manager loop.
func waitForClient(t *testing.T, m *Manager, userID string, want *Client) {
	t.Helper()
	require.Eventually(t, func() bool {
		m.mutex.RLock()
		got := m.clients[userID]
		m.mutex.RUnlock()
		return got == want
	}, time.Second, time.Millisecond)
}

func waitForSendClosed(t *testing.T, c *Client) {
	t.Helper()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-c.Send:
			return !open
		default:
			return false
		}
	}, time.Second, time.Millisecond, "Send channel never closed")
}

func TestUnregisterReleasesFeedExactlyOnce(t *testing.T) {
	m := newTestManager(t)

	var evictions atomic.Int32
	client := &Client{
		UserID:  "user-1",
		Send:    make(chan []byte, 1),
		OnEvict: func() { evictions.Add(1) },
	}

	m.Register <- client
	waitForClient(t, m, "user-1", client)

	m.Unregister <- client

	require.Eventually(t, func() bool { return evictions.Load() == 1 }, time.Second, time.Millisecond)
	waitForSendClosed(t, client)

	// A second disconnect event for the same connection must not release twice.
	m.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), evictions.Load())
}

func TestRegisterReplacesPreviousConnection(t *testing.T) {
	m := newTestManager(t)

	var evictionsFirst, evictionsSecond atomic.Int32
	first := &Client{
		UserID:  "user-1",
		Send:    make(chan []byte, 1),
		OnEvict: func() { evictionsFirst.Add(1) },
	}
	second := &Client{
		UserID:  "user-1",
		Send:    make(chan []byte, 1),
		OnEvict: func() { evictionsSecond.Add(1) },
	}

	m.Register <- first
	waitForClient(t, m, "user-1", first)

	m.Register <- second
	waitForClient(t, m, "user-1", second)

	// The replaced connection is released: feed freed, queue closed.
	assert.Equal(t, int32(1), evictionsFirst.Load())
	waitForSendClosed(t, first)
	assert.Zero(t, evictionsSecond.Load())

	m.SendToUser("user-1", []byte("snapshot"))
	select {
	case msg := <-second.Send:
		assert.Equal(t, "snapshot", string(msg))
	case <-time.After(time.Second):
		t.Fatal("message never delivered to the replacement connection")
	}
}

func TestUnregisterStaleConnectionKeepsCurrent(t *testing.T) {
	m := newTestManager(t)

	var evictionsSecond atomic.Int32
	first := &Client{UserID: "user-1", Send: make(chan []byte, 1), OnEvict: func() {}}
	second := &Client{
		UserID:  "user-1",
		Send:    make(chan []byte, 1),
		OnEvict: func() { evictionsSecond.Add(1) },
	}

	m.Register <- first
	waitForClient(t, m, "user-1", first)
	m.Register <- second
	waitForClient(t, m, "user-1", second)

	// The evicted connection's read pump reporting its disconnect later must
	// not tear down the live replacement.
	m.Unregister <- first
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, evictionsSecond.Load())

	m.SendToUser("user-1", []byte("still here"))
	select {
	case msg := <-second.Send:
		assert.Equal(t, "still here", string(msg))
	case <-time.After(time.Second):
		t.Fatal("current connection stopped receiving")
	}
}

func TestSendToUserDropsSlowConnection(t *testing.T) {
	m := newTestManager(t)

	var evictions atomic.Int32
	client := &Client{
		UserID:  "user-1",
		Send:    make(chan []byte, 1),
		OnEvict: func() { evictions.Add(1) },
	}

	m.Register <- client
	waitForClient(t, m, "user-1", client)

	m.SendToUser("user-1", []byte("first"))  // fills the queue
	m.SendToUser("user-1", []byte("second")) // overflow: the connection is dropped

	require.Eventually(t, func() bool { return evictions.Load() == 1 }, time.Second, time.Millisecond)

	msg, open := <-client.Send
	require.True(t, open)
	assert.Equal(t, "first", string(msg))
	_, open = <-client.Send
	assert.False(t, open, "queue must be closed after the drop")
}

func TestSendToUserUnknownUserIsNoOp(t *testing.T) {
	m := newTestManager(t)
	m.SendToUser("nobody", []byte("lost"))
}
