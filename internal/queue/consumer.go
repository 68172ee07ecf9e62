package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// auditLogName is the file the consumer appends to inside its log directory.
const auditLogName = "catalog.log"

// StartPlantConsumer connects to RabbitMQ, declares the plant.created queue
// (durable) and consumes messages until ctx is cancelled.  Each message is
// appended to <logDir>/catalog.log as a single line.  Connection failures are
// retried with exponential backoff capped at 30s; a malformed message is
// rejected without requeue so the loop keeps going.
func StartPlantConsumer(ctx context.Context, url, logDir string) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warnf("plant-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logDir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnf("plant-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warnf("plant-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(PlantCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, PlantCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleMessage(logDir, d.Body); err != nil {
			log.Errorf("plant-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one plant.created payload and appends its audit line
// to the log directory, creating the directory when needed.
func HandleMessage(logDir string, body []byte) error {
	var ev PlantCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.PlantID == "" {
		return errors.New("event without plant_id")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", logDir, err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, auditLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders the audit line for ev, newline included.
func FormatEvent(ev PlantCreatedEvent) string {
	price := "-"
	if ev.Price != nil {
		price = strconv.FormatFloat(*ev.Price, 'f', 2, 64)
	}
	return fmt.Sprintf("[%s] Plant created | plant_id=%s | source=%s | name=%q | species=%q | chakra=%q | price=%s | featured=%t | tags=[%s]\n",
		ev.CreatedAt, ev.PlantID, ev.Source, ev.Name, ev.Species, ev.Chakra, price, ev.Featured, strings.Join(ev.Tags, ","))
}
