// Package rabbitmq forwards bus events to a RabbitMQ queue so other
// processes can follow connectivity, logout and restaurant creation.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jonborges/menu4you/pkg/events"
)

const (
	publishTimeout = 5 * time.Second
	bufferSize     = 64
)

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Forwarder publishes every bus event on its own goroutine, so emitters
// never wait on the broker. Events that arrive while the buffer is full are
// dropped.
type Forwarder struct {
	pub   Publisher
	queue string

	mu          sync.Mutex
	closed      bool
	pending     chan events.Event
	unsubscribe func()
	done        chan struct{}
}

func NewForwarder(pub Publisher, queue string, bus *events.Bus) *Forwarder {
	f := &Forwarder{
		pub:     pub,
		queue:   queue,
		pending: make(chan events.Event, bufferSize),
		done:    make(chan struct{}),
	}
	f.unsubscribe = bus.Subscribe(f.enqueue)
	go f.run()
	return f
}

func (f *Forwarder) enqueue(e events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.pending <- e:
	default:
		log.Printf("Warning: dropped %s event, forward buffer full", e.Kind)
	}
}

func (f *Forwarder) run() {
	defer close(f.done)
	for e := range f.pending {
		if err := f.publish(e); err != nil {
			log.Printf("Error forwarding %s event: %v", e.Kind, err)
		}
	}
}

func (f *Forwarder) publish(e events.Event) error {
	msg, err := encode(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := f.pub.PublishWithContext(ctx,
		"",      // exchange
		f.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

func encode(e events.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         string(e.Kind),
		Timestamp:    e.At,
		Body:         body,
	}, nil
}

// Close stops forwarding and waits for buffered events to be published.
func (f *Forwarder) Close() {
	f.unsubscribe()
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.pending)
	f.mu.Unlock()
	<-f.done
}
