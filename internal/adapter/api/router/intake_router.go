package router

import (
	"snapstock/internal/adapter/api/handler"
	"snapstock/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupIntakeRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	intakeHandler := handler.GetIntakeHandler()

	intake := e.Group("/v1/intake")
	intake.Use(authMiddleware.Authenticate)
	intake.GET("", intakeHandler.GetState)
	intake.POST("/image", intakeHandler.SelectImage)
	intake.PATCH("/draft", intakeHandler.EditDraft)
	intake.POST("/submit", intakeHandler.Submit)
	intake.DELETE("", intakeHandler.Cancel)
}
