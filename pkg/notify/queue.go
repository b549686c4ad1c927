// Package notify is the toast queue: short-lived messages shown newest
// first that remove themselves after their duration.
package notify

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Info    Kind = "info"
	Warning Kind = "warning"
	Error   Kind = "error"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return Info, nil
	case Info, Warning, Error:
		return k, nil
	default:
		return "", fmt.Errorf("unknown toast kind %q", s)
	}
}

type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Timer is the part of *time.Timer the queue needs.
type Timer interface {
	Stop() bool
}

type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type entry struct {
	toast Toast
	timer Timer
}

type Queue struct {
	mu       sync.Mutex
	entries  []entry // newest first
	duration time.Duration
	max      int

	schedule Scheduler
	now      func() time.Time
	newID    func() (string, error)
}

// NewQueue returns a queue holding at most max toasts. A non-positive max
// means unbounded.
func NewQueue(duration time.Duration, max int) *Queue {
	return &Queue{
		duration: duration,
		max:      max,
		schedule: afterFunc,
		now:      time.Now,
		newID:    newToastID,
	}
}

// newToastID returns a UUIDv7: a millisecond timestamp followed by random
// bits, so ids are unique and roughly ordered by creation.
func newToastID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Show pushes a toast to the front of the queue and schedules its removal.
// An empty kind means Info and a non-positive duration means the queue
// default.
func (q *Queue) Show(message string, kind Kind, duration time.Duration) (Toast, error) {
	if kind == "" {
		kind = Info
	}
	if duration <= 0 {
		duration = q.duration
	}
	id, err := q.newID()
	if err != nil {
		return Toast{}, fmt.Errorf("failed to generate toast id: %w", err)
	}

	now := q.now()
	t := Toast{ID: id, Message: message, Kind: kind, CreatedAt: now, ExpiresAt: now.Add(duration)}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append([]entry{{toast: t}}, q.entries...)
	q.entries[0].timer = q.schedule(duration, func() { q.Dismiss(id) })

	if q.max > 0 {
		for len(q.entries) > q.max {
			oldest := q.entries[len(q.entries)-1]
			oldest.timer.Stop()
			q.entries = q.entries[:len(q.entries)-1]
			log.Printf("Evicted toast %s to keep the queue at %d", oldest.toast.ID, q.max)
		}
	}
	return t, nil
}

// Dismiss removes a toast early. It reports whether the toast was present.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.toast.ID == id {
			if e.timer != nil {
				e.timer.Stop()
			}
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.toast
	}
	return out
}

// Close stops every pending timer and empties the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
}
