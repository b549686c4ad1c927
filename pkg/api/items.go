package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonborges/menu4you/pkg/models"
)

func (c *Client) ItemsByRestaurant(ctx context.Context, restaurantID int64) ([]models.Item, error) {
	return c.itemList(ctx, fmt.Sprintf("/api/restaurants/%d/items", restaurantID))
}

func (c *Client) FeaturedItems(ctx context.Context, restaurantID int64) ([]models.Item, error) {
	return c.itemList(ctx, fmt.Sprintf("/api/restaurants/%d/items/featured", restaurantID))
}

func (c *Client) SearchItems(ctx context.Context, name string) ([]models.Item, error) {
	return c.itemList(ctx, "/api/items/search?name="+url.QueryEscape(name))
}

func (c *Client) itemList(ctx context.Context, path string) ([]models.Item, error) {
	var items models.ItemList
	if err := c.FetchJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateItem(ctx context.Context, req models.ItemRequest) (*models.Item, error) {
	var it models.Item
	if err := c.FetchJSON(ctx, http.MethodPost, "/api/items", req, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *Client) UpdateItem(ctx context.Context, id int64, req models.ItemRequest) (*models.Item, error) {
	var it models.Item
	if err := c.FetchJSON(ctx, http.MethodPut, fmt.Sprintf("/api/items/%d", id), req, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.FetchJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/items/%d", id), nil, nil)
}
