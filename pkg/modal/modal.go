// Package modal tracks which menu item the detail modal is showing.
package modal

import (
	"sync"

	"github.com/jonborges/menu4you/pkg/models"
)

// Selection is an immutable view of the modal. Item and RestaurantID are
// nil when Open is false.
type Selection struct {
	Open         bool         `json:"isOpen"`
	Item         *models.Item `json:"selectedItem"`
	RestaurantID *int64       `json:"restaurantId"`
}

type State struct {
	mu  sync.RWMutex
	sel Selection
}

func New() *State {
	return &State{}
}

// Open shows item. The restaurant is restaurantID when given, else the
// item's own restaurant, else none. Opening while already open replaces
// the previous item.
func (s *State) Open(item models.Item, restaurantID *int64) {
	rid := restaurantID
	if rid == nil {
		rid = item.RestaurantID
	}
	next := Selection{Open: true, Item: &item}
	if rid != nil {
		v := *rid
		next.RestaurantID = &v
	}

	s.mu.Lock()
	s.sel = next
	s.mu.Unlock()
}

func (s *State) Close() {
	s.mu.Lock()
	s.sel = Selection{}
	s.mu.Unlock()
}

func (s *State) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sel
	if out.Item != nil {
		item := *out.Item
		out.Item = &item
	}
	return out
}
