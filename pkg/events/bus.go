// Package events carries process-wide signals between the client core and
// its consumers (connectivity banner, navigation on logout, header refresh).
package events

import (
	"sync"
	"time"
)

type Kind string

const (
	Online            Kind = "network-online"
	Offline           Kind = "network-offline"
	Logout            Kind = "logout"
	RestaurantCreated Kind = "restaurant-created"
)

// Event is a single signal. RestaurantID is set only for RestaurantCreated.
type Event struct {
	Kind         Kind      `json:"kind"`
	RestaurantID int64     `json:"restaurantId,omitempty"`
	At           time.Time `json:"at"`
}

type Handler func(Event)

type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish delivers e synchronously to every subscriber. A nil bus drops it.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

func (b *Bus) Emit(kind Kind) {
	b.Publish(Event{Kind: kind})
}
