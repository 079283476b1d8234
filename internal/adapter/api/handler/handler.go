package handler

import (
	"snapstock/internal/usecase"
)

var (
	intakeHandler  *IntakeHandler
	orderHandler   *OrderHandler
	catalogHandler *CatalogHandler
	healthHandler  *HealthHandler
)

func Setup(
	intakeUseCase *usecase.IntakeUseCase,
	orderUseCase *usecase.OrderUseCase,
	catalogUseCase *usecase.CatalogUseCase,
) {
	intakeHandler = NewIntakeHandler(intakeUseCase)
	orderHandler = NewOrderHandler(orderUseCase)
	catalogHandler = NewCatalogHandler(catalogUseCase)
	healthHandler = NewHealthHandler()
}

func GetIntakeHandler() *IntakeHandler {
	return intakeHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetCatalogHandler() *CatalogHandler {
	return catalogHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
