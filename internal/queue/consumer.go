package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// MessageHandler processes a single decoded notification event.
// Implementations define the actual side effects (sending emails, marking
// the record processed).
type MessageHandler interface {
	HandleMessage(ctx context.Context, ev *NotificationEvent) error
}

// Consumer is a single sequential queue consumer. It holds one connection
// and one channel, declares the durable queue, sets prefetch to 1, and
// processes deliveries strictly one at a time with manual acknowledgment.
//
// Broker unavailability is treated as transient: the consumer reconnects
// forever with a fixed delay. Processing failures are permanent for the
// affected message: it is rejected without requeue.
type Consumer struct {
	cfg     Config
	handler MessageHandler
	log     zerolog.Logger
}

// NewConsumer creates a Consumer that feeds deliveries to the given handler.
func NewConsumer(cfg Config, handler MessageHandler, log zerolog.Logger) *Consumer {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	return &Consumer{cfg: cfg, handler: handler, log: log}
}

// Run consumes until ctx is cancelled. It returns ctx.Err() on shutdown and
// never returns because of broker errors.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.log.Info().Msg("consumer stopped")
			return ctx.Err()
		}

		BrokerReconnectsTotal.Inc()
		c.log.Warn().Err(err).
			Dur("retry_in", c.cfg.ReconnectDelay).
			Msg("broker connection failed, retrying")

		select {
		case <-ctx.Done():
			c.log.Info().Msg("consumer stopped")
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// consume opens a connection and channel, declares the queue, and processes
// deliveries until the connection drops or ctx is cancelled.
func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}

	// One unacknowledged message at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	c.log.Info().Str("queue", c.cfg.Queue).Msg("waiting for messages")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return errors.New("broker connection closed")
			}
			return amqpErr
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery decodes and processes one delivery, then acknowledges or
// rejects it. The handler runs on a non-cancellable context so that an
// in-flight message drains fully during shutdown.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	start := time.Now()

	var ev NotificationEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		c.log.Error().Err(err).
			Uint64("delivery_tag", d.DeliveryTag).
			Msg("malformed event payload, dropping")
		c.reject(d)
		return
	}

	err := c.handler.HandleMessage(context.WithoutCancel(ctx), &ev)
	EventProcessingDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.log.Error().Err(err).
			Int64("contact_request_id", ev.ContactRequestID).
			Msg("event processing failed, dropping")
		c.reject(d)
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		c.log.Error().Err(ackErr).
			Uint64("delivery_tag", d.DeliveryTag).
			Msg("failed to acknowledge delivery")
		return
	}
	EventsConsumedTotal.WithLabelValues("acked").Inc()
}

// reject drops a delivery permanently (no requeue, no dead-letter).
func (c *Consumer) reject(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		c.log.Error().Err(err).
			Uint64("delivery_tag", d.DeliveryTag).
			Msg("failed to reject delivery")
		return
	}
	EventsConsumedTotal.WithLabelValues("rejected").Inc()
}
