package models

import (
	"encoding/json"
	"fmt"
)

type Employee struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	Image        string `json:"image,omitempty"`
	RestaurantID int64  `json:"restaurantId,omitempty"`
}

func (e *Employee) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("employee id must be positive, got %d", e.ID)
	}
	if e.Name == "" {
		return fmt.Errorf("employee %d has no name", e.ID)
	}
	return nil
}

type EmployeeRequest struct {
	Name         string `json:"name" binding:"required"`
	Role         string `json:"role,omitempty"`
	Image        string `json:"image,omitempty"`
	RestaurantID int64  `json:"restaurantId" binding:"required,min=1"`
}

// EmployeeList accepts both a bare JSON array and a HAL collection
// ({"_embedded":{"employees":[...]}}).
type EmployeeList []Employee

func (l *EmployeeList) UnmarshalJSON(data []byte) error {
	var plain []Employee
	if err := json.Unmarshal(data, &plain); err == nil {
		*l = plain
		return nil
	}
	var hal struct {
		Embedded struct {
			Employees []Employee `json:"employees"`
		} `json:"_embedded"`
	}
	if err := json.Unmarshal(data, &hal); err != nil {
		return fmt.Errorf("employees: unrecognised body: %w", err)
	}
	*l = hal.Embedded.Employees
	return nil
}

func (l EmployeeList) Validate() error {
	for i := range l {
		if err := l[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
