package entity

import (
	"time"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"

	ShippingStatusUnshipped = "unshipped"
	ShippingStatusShipped   = "shipped"
)

// OrderLineItem captures the item at the moment it was added to the order.
// Price is a snapshot, not a reference back to the catalog.
type OrderLineItem struct {
	ItemID   string  `json:"item_id" firestore:"itemId"`
	Name     string  `json:"name" firestore:"name"`
	Price    float64 `json:"price" firestore:"price"`
	ImageURL string  `json:"image_url" firestore:"imageUrl"`
	Quantity int     `json:"quantity" firestore:"quantity"`
}

// OrderDraft is the transient state of one order-composition session. It is
// never persisted; it becomes an Order at submit time or is thrown away.
// LineItems behaves as a set keyed by ItemID.
type OrderDraft struct {
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	LineItems     []OrderLineItem `json:"line_items"`
}

type Order struct {
	ID             string          `json:"id" firestore:"id"`
	UserID         string          `json:"user_id" firestore:"userId"`
	CustomerName   string          `json:"customer_name" firestore:"customerName"`
	CustomerPhone  string          `json:"customer_phone" firestore:"customerPhone"`
	LineItems      []OrderLineItem `json:"line_items" firestore:"lineItems"`
	TotalAmount    float64         `json:"total_amount" firestore:"totalAmount"`
	PaymentStatus  string          `json:"payment_status" firestore:"paymentStatus"`
	ShippingStatus string          `json:"shipping_status" firestore:"shippingStatus"`
	CreatedAt      time.Time       `json:"created_at" firestore:"createdAt"`
}
