package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"snapstock/internal/domain/entity"
	ws "snapstock/internal/infrastructure/websocket"
	"snapstock/internal/usecase"
	"snapstock/pkg/errors"
	"snapstock/pkg/logger"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	catalogUseCase *usecase.CatalogUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, catalogUseCase *usecase.CatalogUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		catalogUseCase: catalogUseCase,
	}
}

// catalogMessage is the wire shape pushed over the live catalog socket.
type catalogMessage struct {
	Type  string        `json:"type"`
	Items []entity.Item `json:"items,omitempty"`
	Error string        `json:"error,omitempty"`
}

// HandleCatalogLive upgrades the connection and streams full catalog
// snapshots until the peer disconnects. The feed subscription is owned by the
// connection: eviction or disconnect releases it, so no listener outlives its
// socket.
func (h *WebSocketHandler) HandleCatalogLive(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	// The subscription's lifetime is the connection's, not the HTTP
	// request's, so it is released through OnEvict rather than a request
	// scoped context.
	snapshots, release, err := h.catalogUseCase.Subscribe(context.Background(), userID)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		release()
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 8),
		OnEvict: release,
	}

	h.wsManager.Register <- client

	go h.pumpSnapshots(userID, snapshots)
	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}

func (h *WebSocketHandler) pumpSnapshots(userID string, snapshots <-chan entity.CatalogSnapshot) {
	for snap := range snapshots {
		msg := catalogMessage{Type: "catalog_snapshot", Items: snap.Items}
		if snap.Err != nil {
			msg = catalogMessage{Type: "catalog_error", Error: snap.Err.Error()}
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			logger.Error("Failed to encode catalog snapshot for %s: %v", userID, err)
			continue
		}

		h.wsManager.SendToUser(userID, payload)
	}
}
