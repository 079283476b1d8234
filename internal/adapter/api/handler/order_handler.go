package handler

import (
	"github.com/labstack/echo/v4"

	"snapstock/internal/usecase"
	"snapstock/pkg/response"
	"snapstock/pkg/utils"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

func (h *OrderHandler) GetDraft(c echo.Context) error {
	uid := c.Get("uid").(string)
	return response.Success(c, h.orderUseCase.Composer(uid).Draft())
}

type setCustomerRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// SetCustomer stores whatever the user typed; blank fields are caught by the
// submit validation, not here.
func (h *OrderHandler) SetCustomer(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req setCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	draft := h.orderUseCase.Composer(uid).SetCustomer(req.CustomerName, req.CustomerPhone)
	return response.Success(c, draft)
}

type addLineItemRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

func (h *OrderHandler) AddLineItem(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req addLineItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	draft, err := h.orderUseCase.AddItemToDraft(c.Request().Context(), uid, req.ItemID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, draft)
}

func (h *OrderHandler) RemoveLineItem(c echo.Context) error {
	uid := c.Get("uid").(string)
	composer := h.orderUseCase.Composer(uid)
	composer.RemoveLineItem(c.Param("itemId"))
	return response.Success(c, composer.Draft())
}

func (h *OrderHandler) Submit(c echo.Context) error {
	uid := c.Get("uid").(string)

	order, err := h.orderUseCase.Composer(uid).Submit(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, order)
}

func (h *OrderHandler) DiscardDraft(c echo.Context) error {
	uid := c.Get("uid").(string)
	h.orderUseCase.EndSession(uid)
	return response.Success(c, nil)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	uid := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	orders, total, err := h.orderUseCase.ListOrders(c.Request().Context(), uid, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

type setPaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=unpaid paid"`
}

func (h *OrderHandler) SetPaymentStatus(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req setPaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.SetPaymentStatus(c.Request().Context(), uid, c.Param("id"), req.PaymentStatus)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

type setShippingStatusRequest struct {
	ShippingStatus string `json:"shipping_status" validate:"required,oneof=unshipped shipped"`
}

func (h *OrderHandler) SetShippingStatus(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req setShippingStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.SetShippingStatus(c.Request().Context(), uid, c.Param("id"), req.ShippingStatus)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}
