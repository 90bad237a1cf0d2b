// Package events publishes storefront events to a RabbitMQ topic exchange.
// A nil *Rabbit is a valid, disabled publisher.
package events

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects and declares the exchange. An empty url disables events
// and returns (nil, nil).
func Dial(url, exchange string) (*Rabbit, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange}, nil
}

func (r *Rabbit) Publish(ctx context.Context, key string, body []byte) error {
	if r == nil || r.ch == nil {
		return nil
	}
	return r.ch.PublishWithContext(ctx, r.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
}

func (r *Rabbit) Close() error {
	if r == nil || r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
