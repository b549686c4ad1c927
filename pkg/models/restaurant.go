package models

import "fmt"

type Owner struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type Restaurant struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Cover             string `json:"cover,omitempty"`
	VisibleCategories string `json:"visibleCategories,omitempty"`
	TableCount        int    `json:"tableCount,omitempty"`
	Owner             *Owner `json:"owner,omitempty"`
}

func (r *Restaurant) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("restaurant id must be positive, got %d", r.ID)
	}
	if r.TableCount < 0 {
		return fmt.Errorf("restaurant %d has negative table count", r.ID)
	}
	return nil
}

// HasTable reports whether n is a valid table number for the restaurant.
// A restaurant that does not report a table count accepts any n >= 1.
func (r *Restaurant) HasTable(n int) bool {
	if n < 1 {
		return false
	}
	return r.TableCount == 0 || n <= r.TableCount
}

// RestaurantRequest is used for create (all fields) and update (partial).
type RestaurantRequest struct {
	Name              string `json:"name,omitempty"`
	Description       string `json:"description,omitempty"`
	Cover             string `json:"cover,omitempty"`
	VisibleCategories string `json:"visibleCategories,omitempty"`
	TableCount        *int   `json:"tableCount,omitempty"`
	OwnerID           *int64 `json:"ownerId,omitempty"`
}

type RestaurantList []Restaurant

func (l RestaurantList) Validate() error {
	for i := range l {
		if err := l[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
