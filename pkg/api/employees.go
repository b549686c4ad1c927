package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonborges/menu4you/pkg/models"
)

func (c *Client) Employees(ctx context.Context) ([]models.Employee, error) {
	var list models.EmployeeList
	if err := c.FetchJSON(ctx, http.MethodGet, "/api/employees", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Employee(ctx context.Context, id int64) (*models.Employee, error) {
	var e models.Employee
	if err := c.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/api/employees/%d", id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) EmployeesByRestaurant(ctx context.Context, restaurantID int64) ([]models.Employee, error) {
	var list models.EmployeeList
	if err := c.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/api/restaurants/%d/employees", restaurantID), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateEmployee(ctx context.Context, req models.EmployeeRequest) (*models.Employee, error) {
	var e models.Employee
	if err := c.FetchJSON(ctx, http.MethodPost, "/api/employees", req, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id int64, req models.EmployeeRequest) (*models.Employee, error) {
	var e models.Employee
	if err := c.FetchJSON(ctx, http.MethodPut, fmt.Sprintf("/api/employees/%d", id), req, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id int64) error {
	return c.FetchJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/employees/%d", id), nil, nil)
}
