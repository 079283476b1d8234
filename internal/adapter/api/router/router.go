package router

import (
	"snapstock/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupIntakeRouter(e, authMiddleware)
	SetupCatalogRouter(e, authMiddleware)
	SetupOrderRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
