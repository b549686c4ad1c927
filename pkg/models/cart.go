package models

import "github.com/shopspring/decimal"

// CartItem is one line of the cart, keyed by ItemID.
type CartItem struct {
	ItemID       int64           `json:"itemId" binding:"required,min=1"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	RestaurantID *int64          `json:"restaurantId,omitempty"`
}

// Subtotal is UnitPrice × Quantity.
func (c CartItem) Subtotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
