package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher publishes notification events to the durable queue with
// persistent delivery mode. A fresh connection is opened per publish; the
// API server publishes rarely enough that connection reuse is not worth the
// bookkeeping of a supervised channel.
type Publisher struct {
	cfg Config
	log zerolog.Logger
}

// NewPublisher creates a Publisher for the configured broker and queue.
func NewPublisher(cfg Config, log zerolog.Logger) *Publisher {
	return &Publisher{cfg: cfg, log: log}
}

// Publish declares the durable queue and publishes a single persistent
// JSON-encoded event to it.
func (p *Publisher) Publish(ctx context.Context, ev *NotificationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		EventPublishFailuresTotal.Inc()
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		EventPublishFailuresTotal.Inc()
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	// Idempotent declaration; both ends declare so either can start first.
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		EventPublishFailuresTotal.Inc()
		return fmt.Errorf("declare queue %s: %w", p.cfg.Queue, err)
	}

	err = ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         data,
	})
	if err != nil {
		EventPublishFailuresTotal.Inc()
		return fmt.Errorf("publish to %s: %w", p.cfg.Queue, err)
	}

	EventsPublishedTotal.Inc()
	p.log.Debug().
		Int64("contact_request_id", ev.ContactRequestID).
		Str("queue", p.cfg.Queue).
		Msg("notification event published")
	return nil
}
