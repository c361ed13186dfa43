// Package queue_publisher publishes onboarding events to RabbitMQ
// for the Discord bot to act on.  Errors are logged and returned so
// callers can decide whether a failed publish should abort the
// request; delivery is at-least-once and messages are persistent.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/aleccorey/reminder-api/internal/queue"
)

const (
	// ChannelQueue carries ChannelProvisionRequested events.
	ChannelQueue = "reminder.channel"
	// TestQueue carries SetupTestRequested events.
	TestQueue = "reminder.test"
)

// Publisher publishes events to the broker at the configured URL.
// A fresh connection per publish keeps the API stateless toward the
// broker; onboarding traffic is far too light to need pooling.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher, or nil when no broker URL is
// configured.  A nil Publisher drops events silently, which keeps
// local development working without a broker.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// PublishChannelRequest asks the bot to provision a private reminder
// channel for the user.
func (p *Publisher) PublishChannelRequest(ctx context.Context, ev q.ChannelProvisionRequested) error {
	return p.publish(ctx, ChannelQueue, ev)
}

// PublishTestRequest asks the bot to send a test delivery.
func (p *Publisher) PublishTestRequest(ctx context.Context, ev q.SetupTestRequested) error {
	return p.publish(ctx, TestQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Declare is idempotent.  Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
