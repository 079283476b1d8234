package handler

import (
	"github.com/labstack/echo/v4"

	"snapstock/internal/usecase"
	"snapstock/pkg/response"
	"snapstock/pkg/utils"
)

type CatalogHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewCatalogHandler(catalogUseCase *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
	}
}

// ListItems is the one-shot catalog read; live consumers use the WebSocket
// endpoint instead.
func (h *CatalogHandler) ListItems(c echo.Context) error {
	uid := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.catalogUseCase.ListItems(c.Request().Context(), uid, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}
