package rabbitmq

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Conn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials url and declares the durable queue events are sent to.
func Connect(url, queue string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	log.Printf("Connected to RabbitMQ, forwarding to queue %s", queue)
	return &Conn{conn: conn, ch: ch}, nil
}

func (c *Conn) Channel() *amqp.Channel {
	return c.ch
}

func (c *Conn) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	log.Println("Closed RabbitMQ connection")
}
