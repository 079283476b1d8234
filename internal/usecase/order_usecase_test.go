package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapstock/internal/domain/entity"
	apperrors "snapstock/pkg/errors"
)

func testItem(id, title string, price float64) *entity.Item {
	return &entity.Item{
		ID:           id,
		OwnerID:      "user-1",
		Title:        title,
		SellingPrice: price,
		ImageURL:     "https://blobs.test/" + id + ".jpg",
	}
}

func TestAddLineItemDuplicateIsNoOp(t *testing.T) {
	composer := NewOrderComposer("user-1", newFakeOrderRepo())
	item := testItem("item-1", "Blue Mug", 9.5)

	require.NoError(t, composer.AddLineItem(item))

	err := composer.AddLineItem(item)
	assert.True(t, apperrors.Is(err, "DUPLICATE_ITEM"))

	draft := composer.Draft()
	require.Len(t, draft.LineItems, 1)
	assert.Equal(t, 1, draft.LineItems[0].Quantity)
}

func TestRemoveLineItem(t *testing.T) {
	composer := NewOrderComposer("user-1", newFakeOrderRepo())
	require.NoError(t, composer.AddLineItem(testItem("item-1", "Mug", 5)))
	require.NoError(t, composer.AddLineItem(testItem("item-2", "Vase", 15)))

	composer.RemoveLineItem("item-1")
	draft := composer.Draft()
	require.Len(t, draft.LineItems, 1)
	assert.Equal(t, "item-2", draft.LineItems[0].ItemID)

	// Removing something absent changes nothing.
	composer.RemoveLineItem("item-99")
	assert.Len(t, composer.Draft().LineItems, 1)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(c *OrderComposer)
		message string
	}{
		{
			name:    "missing customer name",
			prepare: func(c *OrderComposer) { c.SetCustomer("  ", "555-0100"); c.AddLineItem(testItem("item-1", "Mug", 5)) },
			message: "customer name is required",
		},
		{
			name:    "missing customer phone",
			prepare: func(c *OrderComposer) { c.SetCustomer("Ada", ""); c.AddLineItem(testItem("item-1", "Mug", 5)) },
			message: "customer phone is required",
		},
		{
			name:    "no line items",
			prepare: func(c *OrderComposer) { c.SetCustomer("Ada", "555-0100") },
			message: "at least one item is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo()
			composer := NewOrderComposer("user-1", repo)
			tt.prepare(composer)

			_, err := composer.Submit(context.Background())

			require.True(t, apperrors.Is(err, "VALIDATION_ERROR"))
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Zero(t, repo.orderCreateCalls(), "validation failures must not reach the gateway")
		})
	}
}

func TestSubmitSuccessClearsDraft(t *testing.T) {
	repo := newFakeOrderRepo()
	composer := NewOrderComposer("user-1", repo)
	composer.SetCustomer("Ada Lovelace", "555-0100")
	require.NoError(t, composer.AddLineItem(testItem("item-1", "Mug", 9.5)))
	require.NoError(t, composer.AddLineItem(testItem("item-2", "Vase", 20)))

	order, err := composer.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, 29.5, order.TotalAmount)
	assert.Equal(t, entity.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, entity.ShippingStatusUnshipped, order.ShippingStatus)
	assert.Len(t, order.LineItems, 2)

	draft := composer.Draft()
	assert.Empty(t, draft.CustomerName)
	assert.Empty(t, draft.CustomerPhone)
	assert.Empty(t, draft.LineItems)
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.createErr = apperrors.Unavailable("Datastore unavailable while writing order", nil)
	composer := NewOrderComposer("user-1", repo)
	composer.SetCustomer("Ada", "555-0100")
	require.NoError(t, composer.AddLineItem(testItem("item-1", "Mug", 9.5)))

	_, err := composer.Submit(context.Background())
	require.Error(t, err)

	draft := composer.Draft()
	assert.Equal(t, "Ada", draft.CustomerName)
	assert.Equal(t, "555-0100", draft.CustomerPhone)
	assert.Len(t, draft.LineItems, 1)

	// Retry without re-entering anything.
	repo.mu.Lock()
	repo.createErr = nil
	repo.mu.Unlock()

	order, err := composer.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9.5, order.TotalAmount)
}

func TestSubmitReentryBlocked(t *testing.T) {
	repo := newFakeOrderRepo()
	gate := make(chan struct{})
	repo.createGate = gate
	composer := NewOrderComposer("user-1", repo)
	composer.SetCustomer("Ada", "555-0100")
	require.NoError(t, composer.AddLineItem(testItem("item-1", "Mug", 9.5)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		composer.Submit(context.Background())
	}()

	require.Eventually(t, func() bool { return repo.orderCreateCalls() == 1 }, time.Second, time.Millisecond)

	_, err := composer.Submit(context.Background())
	assert.True(t, apperrors.Is(err, "CONFLICT"))

	close(gate)
	wg.Wait()

	// Exactly one order document.
	assert.Equal(t, 1, repo.orderCreateCalls())
}

func TestAddItemToDraftResolvesCatalogItem(t *testing.T) {
	itemRepo := newFakeItemRepo()
	itemRepo.items["item-7"] = testItem("item-7", "Clock", 40)
	uc := NewOrderUseCase(newFakeOrderRepo(), itemRepo)

	draft, err := uc.AddItemToDraft(context.Background(), "user-1", "item-7")
	require.NoError(t, err)
	require.Len(t, draft.LineItems, 1)
	assert.Equal(t, "Clock", draft.LineItems[0].Name)
	assert.Equal(t, 40.0, draft.LineItems[0].Price)

	_, err = uc.AddItemToDraft(context.Background(), "user-1", "missing")
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
}

func TestStatusFlips(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	uc := NewOrderUseCase(orderRepo, newFakeItemRepo())

	composer := uc.Composer("user-1")
	composer.SetCustomer("Ada", "555-0100")
	require.NoError(t, composer.AddLineItem(testItem("item-1", "Mug", 9.5)))
	order, err := composer.Submit(context.Background())
	require.NoError(t, err)

	flipped, err := uc.SetPaymentStatus(context.Background(), "user-1", order.ID, entity.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, flipped.PaymentStatus)

	flipped, err = uc.SetShippingStatus(context.Background(), "user-1", order.ID, entity.ShippingStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, entity.ShippingStatusShipped, flipped.ShippingStatus)

	_, err = uc.SetPaymentStatus(context.Background(), "user-1", order.ID, "refunded")
	assert.True(t, apperrors.Is(err, "VALIDATION_ERROR"))

	// Another user cannot flip someone else's order.
	_, err = uc.SetPaymentStatus(context.Background(), "user-2", order.ID, entity.PaymentStatusPaid)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
}
