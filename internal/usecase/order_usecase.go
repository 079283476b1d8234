package usecase

import (
	"context"
	"strings"
	"sync"

	"snapstock/internal/domain/entity"
	"snapstock/internal/domain/repository"
	"snapstock/pkg/errors"
	"snapstock/pkg/logger"
)

// OrderUseCase owns one OrderComposer per user for the duration of an
// order-creation session.
type OrderUseCase struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.ItemRepository

	mu        sync.Mutex
	composers map[string]*OrderComposer
}

func NewOrderUseCase(orderRepo repository.OrderRepository, itemRepo repository.ItemRepository) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		composers: make(map[string]*OrderComposer),
	}
}

func (uc *OrderUseCase) Composer(userID string) *OrderComposer {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	composer, ok := uc.composers[userID]
	if !ok {
		composer = NewOrderComposer(userID, uc.orderRepo)
		uc.composers[userID] = composer
	}
	return composer
}

// EndSession drops the user's draft, e.g. when the composing screen is left.
func (uc *OrderUseCase) EndSession(userID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.composers, userID)
}

// AddItemToDraft resolves the item from the catalog and adds it to the user's
// draft. The stored item is the source of truth for name, price and image.
func (uc *OrderUseCase) AddItemToDraft(ctx context.Context, userID, itemID string) (entity.OrderDraft, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return uc.Composer(userID).Draft(), err
	}

	composer := uc.Composer(userID)
	if err := composer.AddLineItem(item); err != nil {
		return composer.Draft(), err
	}
	return composer.Draft(), nil
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, int64, error) {
	return uc.orderRepo.ListByUser(ctx, userID, limit, offset)
}

// SetPaymentStatus flips an order between unpaid and paid.
func (uc *OrderUseCase) SetPaymentStatus(ctx context.Context, userID, orderID, paymentStatus string) (*entity.Order, error) {
	if paymentStatus != entity.PaymentStatusUnpaid && paymentStatus != entity.PaymentStatusPaid {
		return nil, errors.Validation("payment status must be unpaid or paid")
	}

	order, err := uc.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if err := uc.orderRepo.UpdatePaymentStatus(ctx, orderID, paymentStatus); err != nil {
		return nil, err
	}
	order.PaymentStatus = paymentStatus
	return order, nil
}

// SetShippingStatus flips an order between unshipped and shipped.
func (uc *OrderUseCase) SetShippingStatus(ctx context.Context, userID, orderID, shippingStatus string) (*entity.Order, error) {
	if shippingStatus != entity.ShippingStatusUnshipped && shippingStatus != entity.ShippingStatusShipped {
		return nil, errors.Validation("shipping status must be unshipped or shipped")
	}

	order, err := uc.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if err := uc.orderRepo.UpdateShippingStatus(ctx, orderID, shippingStatus); err != nil {
		return nil, err
	}
	order.ShippingStatus = shippingStatus
	return order, nil
}

func (uc *OrderUseCase) ownedOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errors.NotFound("Order", nil)
	}
	return order, nil
}

// OrderComposer builds one order from catalog selections plus locally entered
// customer data. The draft belongs exclusively to the composer; a submitting
// flag makes the gateway call at-most-once per draft even under a double
// submit.
type OrderComposer struct {
	userID    string
	orderRepo repository.OrderRepository

	mu         sync.Mutex
	draft      entity.OrderDraft
	submitting bool
}

func NewOrderComposer(userID string, orderRepo repository.OrderRepository) *OrderComposer {
	return &OrderComposer{
		userID:    userID,
		orderRepo: orderRepo,
	}
}

// Draft returns a value copy; callers cannot reach the composer's own slice.
func (c *OrderComposer) Draft() entity.OrderDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftCopyLocked()
}

func (c *OrderComposer) SetCustomer(name, phone string) entity.OrderDraft {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft.CustomerName = name
	c.draft.CustomerPhone = phone
	return c.draftCopyLocked()
}

// AddLineItem adds the item with quantity 1. Adding an item that is already
// present is a no-op surfaced as a DUPLICATE_ITEM warning.
func (c *OrderComposer) AddLineItem(item *entity.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range c.draft.LineItems {
		if line.ItemID == item.ID {
			return errors.DuplicateItem("This item is already in the order")
		}
	}

	c.draft.LineItems = append(c.draft.LineItems, entity.OrderLineItem{
		ItemID:   item.ID,
		Name:     item.Title,
		Price:    item.SellingPrice,
		ImageURL: item.ImageURL,
		Quantity: 1,
	})
	return nil
}

// RemoveLineItem removes the item if present; removing an absent item is a
// no-op.
func (c *OrderComposer) RemoveLineItem(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, line := range c.draft.LineItems {
		if line.ItemID == itemID {
			c.draft.LineItems = append(c.draft.LineItems[:i], c.draft.LineItems[i+1:]...)
			return
		}
	}
}

// Submit validates the draft, writes the order exactly once and clears the
// draft on success. On a gateway failure the draft is left untouched so the
// user can retry without re-entering anything.
func (c *OrderComposer) Submit(ctx context.Context) (*entity.Order, error) {
	c.mu.Lock()

	if c.submitting {
		c.mu.Unlock()
		return nil, errors.Conflict("Order submission already in progress")
	}

	if strings.TrimSpace(c.draft.CustomerName) == "" {
		c.mu.Unlock()
		return nil, errors.Validation("customer name is required")
	}
	if strings.TrimSpace(c.draft.CustomerPhone) == "" {
		c.mu.Unlock()
		return nil, errors.Validation("customer phone is required")
	}
	if len(c.draft.LineItems) == 0 {
		c.mu.Unlock()
		return nil, errors.Validation("at least one item is required")
	}

	c.submitting = true
	draft := c.draftCopyLocked()
	c.mu.Unlock()

	// totalAmount is frozen here; later price edits to catalog items do not
	// touch existing orders.
	var total float64
	for _, line := range draft.LineItems {
		total += line.Price * float64(line.Quantity)
	}

	order := &entity.Order{
		UserID:         c.userID,
		CustomerName:   strings.TrimSpace(draft.CustomerName),
		CustomerPhone:  strings.TrimSpace(draft.CustomerPhone),
		LineItems:      draft.LineItems,
		TotalAmount:    total,
		PaymentStatus:  entity.PaymentStatusUnpaid,
		ShippingStatus: entity.ShippingStatusUnshipped,
	}

	err := c.orderRepo.Create(ctx, order)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil {
		logger.Error("Order persist failed for user %s: %v", c.userID, err)
		return nil, err
	}

	c.draft = entity.OrderDraft{}
	return order, nil
}

func (c *OrderComposer) draftCopyLocked() entity.OrderDraft {
	draftCopy := c.draft
	draftCopy.LineItems = make([]entity.OrderLineItem, len(c.draft.LineItems))
	copy(draftCopy.LineItems, c.draft.LineItems)
	return draftCopy
}
