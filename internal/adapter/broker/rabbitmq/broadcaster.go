// Package rabbitmq provides the AMQP event broadcaster, the alternative
// realtime transport to Redis pub/sub.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/karystudio/podpool/internal/core/port"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// exchange is the topic exchange workspace events are published to; the
// routing key carries the workspace channel name so consumers can bind to a
// single workspace.
const exchange = "workspace.events"

type broadcaster struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewBroadcaster dials the broker and declares the events exchange.
func NewBroadcaster(url string, log *zap.Logger) (port.EventBroadcaster, error) {
	var conn *amqp.Connection
	var err error

	// Retry connection up to 10 times with backoff
	maxRetries := 10
	for i := 1; i <= maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr == nil {
				if declErr := ch.ExchangeDeclare(
					exchange, // name
					"topic",  // kind
					true,     // durable
					false,    // auto-delete
					false,    // internal
					false,    // no-wait
					nil,      // arguments
				); declErr != nil {
					conn.Close()
					return nil, declErr
				}
				return &broadcaster{
					conn: conn,
					ch:   ch,
					log:  log,
				}, nil
			}
			err = chErr
			conn.Close()
		}

		log.Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)

		// Simple incremental backoff
		time.Sleep(time.Duration(i*2) * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (b *broadcaster) Publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	err = b.ch.PublishWithContext(ctx,
		exchange, // Exchange
		channel,  // Routing key
		false,    // Mandatory
		false,    // Immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
		return err
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.String("event", event))
	return nil
}
