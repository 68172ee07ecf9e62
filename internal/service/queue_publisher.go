// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/plant-catalog/internal/model"
	q "github.com/iliyamo/plant-catalog/internal/queue"
)

// QueuePublisher publishes catalog events to the plant.created queue.  Each
// publish opens its own connection; catalog writes are rare enough that a
// long-lived channel is not worth the reconnect handling.
type QueuePublisher struct {
	URL string
}

func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{URL: url}
}

// PlantCreated builds the event describing a stored plant.
func PlantCreated(p model.Plant, source string) q.PlantCreatedEvent {
	ev := q.PlantCreatedEvent{
		PlantID:   p.ID.Hex(),
		Name:      p.Name,
		Price:     p.Price,
		Tags:      p.Tags,
		Featured:  p.Featured,
		Source:    source,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if ev.Tags == nil {
		ev.Tags = []string{}
	}
	if p.Species != nil {
		ev.Species = *p.Species
	}
	if p.Chakra != nil {
		ev.Chakra = *p.Chakra
	}
	return ev
}

// PublishPlantCreated publishes event as a persistent JSON message.  The
// function never panics; any error is logged and returned.
func (p *QueuePublisher) PublishPlantCreated(ctx context.Context, event q.PlantCreatedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.PlantCreatedQueue, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		log.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Warnf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                  // default exchange
		q.PlantCreatedQueue, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	); err != nil {
		log.Warnf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
