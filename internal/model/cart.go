package model

import (
	"math"
	"time"
)

// CartEntry is a user's pending selection of one item.
type CartEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ItemID    int64     `json:"item_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Item      *Item     `json:"item,omitempty"`
}

// Subtotal is zero when the item was not loaded with the entry.
func (e CartEntry) Subtotal() float64 {
	if e.Item == nil {
		return 0
	}
	return float64(e.Quantity) * e.Item.Price
}

type Cart struct {
	Entries []CartEntry `json:"cart"`
	Total   float64     `json:"total"`
}

// NewCart computes the cart total rounded to cents.
func NewCart(entries []CartEntry) *Cart {
	if entries == nil {
		entries = []CartEntry{}
	}
	var total float64
	for _, e := range entries {
		total += e.Subtotal()
	}
	return &Cart{
		Entries: entries,
		Total:   math.Round(total*100) / 100,
	}
}
