package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Item is a menu item as served by the backend.
type Item struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Category     string          `json:"category,omitempty"`
	Featured     bool            `json:"featured,omitempty"`
	UserID       *int64          `json:"userId,omitempty"`
	RestaurantID *int64          `json:"restaurantId,omitempty"`
}

func (i *Item) Validate() error {
	if i.ID <= 0 {
		return fmt.Errorf("item id must be positive, got %d", i.ID)
	}
	if i.Name == "" {
		return fmt.Errorf("item %d has no name", i.ID)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("item %d has negative price %s", i.ID, i.Price)
	}
	return nil
}

// ItemRequest is the payload for creating or updating an item.
type ItemRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Category     string          `json:"category,omitempty"`
	Featured     *bool           `json:"featured,omitempty"`
	UserID       *int64          `json:"userId,omitempty"`
	RestaurantID int64           `json:"restaurantId" binding:"required,min=1"`
}

type ItemList []Item

func (l ItemList) Validate() error {
	for i := range l {
		if err := l[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
