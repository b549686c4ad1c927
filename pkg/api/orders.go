package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonborges/menu4you/pkg/models"
)

// IdempotencyHeader lets the backend drop a resubmitted order.
const IdempotencyHeader = "Idempotency-Key"

func (c *Client) CreateOrder(ctx context.Context, req models.OrderRequest, idempotencyKey string) (*models.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		header.Set(IdempotencyHeader, idempotencyKey)
	}

	var order models.Order
	if err := c.send(ctx, http.MethodPost, "/orders", body, header, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) OrdersByRestaurant(ctx context.Context, restaurantID int64) ([]models.Order, error) {
	var orders models.OrderList
	if err := c.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/restaurant/%d", restaurantID), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) DeleteOrder(ctx context.Context, orderID int64) error {
	return c.FetchJSON(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil, nil)
}
