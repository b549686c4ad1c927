package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jonborges/menu4you/pkg/events"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	msgs []amqp.Publishing
	err  error
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, exchange+"/"+key)
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestForwarderPublishesPersistentJSON(t *testing.T) {
	bus := events.NewBus()
	pub := &recordingPublisher{}
	f := NewForwarder(pub, "menu4you_events", bus)

	bus.Publish(events.Event{Kind: events.RestaurantCreated, RestaurantID: 12})
	bus.Emit(events.Offline)
	f.Close()

	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if pub.keys[0] != "/menu4you_events" {
		t.Fatalf("routing = %q", pub.keys[0])
	}
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" || msg.Type != string(events.RestaurantCreated) {
		t.Fatalf("message headers = %+v", msg)
	}
	var got events.Event
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.Kind != events.RestaurantCreated || got.RestaurantID != 12 || got.At.IsZero() {
		t.Fatalf("decoded %+v", got)
	}
	if pub.msgs[1].Type != string(events.Offline) {
		t.Fatalf("second message type = %q", pub.msgs[1].Type)
	}
}

func TestPublishFailureDoesNotReachEmitter(t *testing.T) {
	bus := events.NewBus()
	f := NewForwarder(&recordingPublisher{err: errors.New("broker gone")}, "q", bus)

	bus.Emit(events.Logout)
	f.Close()
}

func TestCloseStopsForwarding(t *testing.T) {
	bus := events.NewBus()
	pub := &recordingPublisher{}
	f := NewForwarder(pub, "q", bus)
	f.Close()
	f.Close()

	bus.Emit(events.Online)

	if len(pub.msgs) != 0 {
		t.Fatalf("published after close: %d", len(pub.msgs))
	}
}
