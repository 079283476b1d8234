package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"snapstock/pkg/logger"
)

// Client is one live catalog connection. OnEvict releases resources tied to
// the connection (the catalog feed subscription) and runs exactly once, on
// unregister.
type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan []byte
	OnEvict func()
}

// Manager tracks at most one live catalog connection per user. Registering a
// new connection for a user evicts the previous one, which keeps the
// one-listener-per-user rule intact across reconnects.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if prev, ok := m.clients[client.UserID]; ok {
					m.evictLocked(prev)
				}
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Debug("Catalog client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if current, ok := m.clients[client.UserID]; ok && current == client {
					m.evictLocked(client)
				}
				m.mutex.Unlock()
				logger.Debug("Catalog client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) evictLocked(client *Client) {
	delete(m.clients, client.UserID)
	close(client.Send)
	if client.OnEvict != nil {
		client.OnEvict()
	}
}

// SendToUser queues a message for the user's connection, if any. A connection
// whose queue is full is dropped rather than allowed to block snapshot
// delivery.
func (m *Manager) SendToUser(userID string, message []byte) {
	// The send happens under the read lock so an eviction cannot close the
	// channel mid-send.
	m.mutex.RLock()
	client, ok := m.clients[userID]
	if !ok {
		m.mutex.RUnlock()
		return
	}

	var dropped *Client
	select {
	case client.Send <- message:
	default:
		dropped = client
	}
	m.mutex.RUnlock()

	if dropped != nil {
		m.Unregister <- dropped
	}
}

// ReadPump drains the connection until the peer closes it, then unregisters.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Catalog socket read error for %s: %v", c.UserID, err)
			}
			return
		}
	}
}

// WritePump sends queued messages to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("Catalog socket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
