package entity

import (
	"time"
)

// Item is one catalog entry. Items are immutable after creation; edits happen
// through a separate flow outside the intake pipeline.
type Item struct {
	ID           string    `json:"id" firestore:"id"`
	OwnerID      string    `json:"owner_id" firestore:"ownerId"`
	Title        string    `json:"title" firestore:"title"`
	Description  string    `json:"description" firestore:"description"`
	SellingPrice float64   `json:"selling_price" firestore:"sellingPrice"`
	ImageURL     string    `json:"image_url" firestore:"imageUrl"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
}
