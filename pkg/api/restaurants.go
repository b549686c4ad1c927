package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonborges/menu4you/pkg/events"
	"github.com/jonborges/menu4you/pkg/models"
)

func (c *Client) Restaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := c.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/api/restaurants/%d", id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	var list models.RestaurantList
	if err := c.FetchJSON(ctx, http.MethodGet, "/api/restaurants", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) RestaurantByOwner(ctx context.Context, ownerID int64) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := c.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/api/restaurants/owner/%d", ownerID), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRestaurant publishes events.RestaurantCreated on success.
func (c *Client) CreateRestaurant(ctx context.Context, req models.RestaurantRequest) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := c.FetchJSON(ctx, http.MethodPost, "/api/restaurants", req, &r); err != nil {
		return nil, err
	}
	c.bus.Publish(events.Event{Kind: events.RestaurantCreated, RestaurantID: r.ID})
	return &r, nil
}

func (c *Client) UpdateRestaurant(ctx context.Context, id int64, req models.RestaurantRequest) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := c.FetchJSON(ctx, http.MethodPut, fmt.Sprintf("/api/restaurants/%d", id), req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
