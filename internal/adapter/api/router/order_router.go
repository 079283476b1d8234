package router

import (
	"snapstock/internal/adapter/api/handler"
	"snapstock/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupOrderRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	orderHandler := handler.GetOrderHandler()

	orders := e.Group("/v1/orders")
	orders.Use(authMiddleware.Authenticate)
	orders.GET("", orderHandler.ListOrders)
	orders.PATCH("/:id/payment", orderHandler.SetPaymentStatus)
	orders.PATCH("/:id/shipping", orderHandler.SetShippingStatus)

	draft := e.Group("/v1/order-draft")
	draft.Use(authMiddleware.Authenticate)
	draft.GET("", orderHandler.GetDraft)
	draft.PUT("/customer", orderHandler.SetCustomer)
	draft.POST("/items", orderHandler.AddLineItem)
	draft.DELETE("/items/:itemId", orderHandler.RemoveLineItem)
	draft.POST("/submit", orderHandler.Submit)
	draft.DELETE("", orderHandler.DiscardDraft)
}
