package router

import (
	"snapstock/internal/adapter/api/handler"
	"snapstock/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupCatalogRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	catalogHandler := handler.GetCatalogHandler()

	catalog := e.Group("/v1/catalog")
	catalog.Use(authMiddleware.Authenticate)
	catalog.GET("", catalogHandler.ListItems)
}

func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	// Browsers cannot attach headers to a WebSocket handshake, so the live
	// endpoint authenticates via a query token.
	e.GET("/v1/catalog/live", wsHandler.HandleCatalogLive, authMiddleware.AuthenticateQueryToken)
}
