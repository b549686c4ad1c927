package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// OrderLine is one item of an order submission.
type OrderLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// OrderRequest is derived from the cart at checkout and never stored.
type OrderRequest struct {
	UserID       *int64      `json:"userId"`
	RestaurantID *int64      `json:"restaurantId"`
	TableNumber  *int        `json:"tableNumber"`
	Items        []OrderLine `json:"items"`
	GuestName    string      `json:"guestName,omitempty"`
}

// OrderItem is an item line of an order record returned by the backend.
type OrderItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Order is the order record returned by the backend.
type Order struct {
	ID          int64           `json:"id"`
	TableNumber *int            `json:"tableNumber,omitempty"`
	GuestName   string          `json:"guestName,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Status      OrderStatus     `json:"status,omitempty"`
	Items       []OrderItem     `json:"items,omitempty"`
	CreatedAt   int64           `json:"createdAt,omitempty"`
}

func (o *Order) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("order id must be positive, got %d", o.ID)
	}
	for _, it := range o.Items {
		if it.Quantity < 0 {
			return fmt.Errorf("order %d has negative quantity for item %d", o.ID, it.ID)
		}
	}
	return nil
}

type OrderList []Order

func (l OrderList) Validate() error {
	for i := range l {
		if err := l[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
