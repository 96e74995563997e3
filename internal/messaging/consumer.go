package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"pizzapap/internal/logger"
)

// MessageHandler processes one message body. A returned error requeues it.
type MessageHandler func(ctx context.Context, routingKey string, body []byte) error

// Consumer reads a queue with manual acknowledgements
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new message consumer
func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// Run consumes until ctx is done, re-registering after the broker closes
// the delivery channel. It gives up after connectAttempts subscribe
// failures in a row.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	failures := 0
	for {
		msgs, err := c.subscribe(ctx)
		if err != nil {
			failures++
			if failures >= connectAttempts || ctx.Err() != nil {
				return err
			}

			c.logger.Error("consumer_subscribe_failed", "Subscribe failed, retrying", "", err, map[string]interface{}{
				"queue":   c.queueName,
				"attempt": failures,
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectInterval):
			}
			continue
		}
		failures = 0

		c.logger.Info("consumer_started",
			fmt.Sprintf("Started consuming from queue %s", c.queueName),
			"", map[string]interface{}{
				"queue":    c.queueName,
				"consumer": c.consumerTag,
				"prefetch": c.prefetch,
			})

		if done := c.drain(ctx, msgs, handler); done {
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		}

		c.logger.Error("consumer_channel_closed", "Delivery channel closed, reconnecting", "", nil, nil)
	}
}

func (c *Consumer) subscribe(ctx context.Context) (<-chan amqp091.Delivery, error) {
	channel, err := c.conn.Channel(ctx)
	if err != nil {
		return nil, err
	}

	if err := channel.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set QoS: %w", err)
	}

	msgs, err := channel.Consume(
		c.queueName,
		c.consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("register consumer: %w", err)
	}
	return msgs, nil
}

// drain processes deliveries and reports whether ctx ended the loop
func (c *Consumer) drain(ctx context.Context, msgs <-chan amqp091.Delivery, handler MessageHandler) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case d, ok := <-msgs:
			if !ok {
				return false
			}
			c.processMessage(ctx, d, handler)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) processMessage(ctx context.Context, delivery amqp091.Delivery, handler MessageHandler) {
	c.handle(ctx, delivery.RoutingKey, delivery.Body, &delivery, handler)
}

func (c *Consumer) handle(ctx context.Context, routingKey string, body []byte, ack acknowledger, handler MessageHandler) {
	start := time.Now()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := handler(processingCtx, routingKey, body)

	details := map[string]interface{}{
		"queue":       c.queueName,
		"routing_key": routingKey,
		"duration_ms": time.Since(start).Milliseconds(),
	}

	if err != nil {
		c.logger.Error("message_processing_failed", "Failed to process message", "", err, details)
		if nackErr := ack.Nack(false, true); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, nil)
		}
		return
	}

	c.logger.Debug("message_processed", "Successfully processed message", "", details)
	if ackErr := ack.Ack(false); ackErr != nil {
		c.logger.Error("message_ack_failed", "Failed to ack message", "", ackErr, nil)
	}
}
