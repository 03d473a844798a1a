package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/queue"
)

// Publisher sends domain events. Implementations log their own failures;
// callers ignore the returned error beyond that.
type Publisher interface {
	PublishSyncCompleted(ctx context.Context, ev queue.SyncCompletedEvent) error
	PublishSurveySubmitted(ctx context.Context, ev queue.SurveySubmittedEvent) error
}

// QueuePublisher publishes to RabbitMQ with one connection per message.
// Messages are persistent and queues durable.
type QueuePublisher struct {
	url string
	log *logging.Logger
}

func NewQueuePublisher(url string, log *logging.Logger) *QueuePublisher {
	if log == nil {
		log = logging.Nop()
	}
	return &QueuePublisher{url: url, log: log}
}

func (p *QueuePublisher) PublishSyncCompleted(ctx context.Context, ev queue.SyncCompletedEvent) error {
	return p.publish(ctx, queue.EventsSyncedQueue, ev)
}

func (p *QueuePublisher) PublishSurveySubmitted(ctx context.Context, ev queue.SurveySubmittedEvent) error {
	return p.publish(ctx, queue.SurveySubmittedQueue, ev)
}

func (p *QueuePublisher) publish(ctx context.Context, name string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		p.log.Warnf("rabbitmq: queue declare %s failed: %v", name, err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warnf("rabbitmq: marshal %s failed: %v", name, err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", name, false, false, pub); err != nil {
		p.log.Warnf("rabbitmq: publish %s failed: %v", name, err)
		return err
	}
	return nil
}
