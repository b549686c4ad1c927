package events

import (
	"sync"
	"time"
)

// Connectivity tracks the last online/offline signal seen on a bus.
type Connectivity struct {
	mu      sync.RWMutex
	offline bool
	changed time.Time
	stop    func()
}

func NewConnectivity(bus *Bus) *Connectivity {
	c := &Connectivity{}
	c.stop = bus.Subscribe(c.observe)
	return c
}

func (c *Connectivity) observe(e Event) {
	switch e.Kind {
	case Online, Offline:
	default:
		return
	}
	offline := e.Kind == Offline

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offline != offline || c.changed.IsZero() {
		c.offline = offline
		c.changed = e.At
	}
}

func (c *Connectivity) Offline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offline
}

// Since returns when the current state was first observed; zero if no
// signal has been seen yet.
func (c *Connectivity) Since() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changed
}

func (c *Connectivity) Close() {
	c.stop()
}
