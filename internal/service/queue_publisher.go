// Package queue_publisher provides functions to publish domain events to
// RabbitMQ. Errors are logged and returned so callers can ignore failures
// without interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/bodasuite/boda-suite/internal/queue"
)

// PublishPaymentRecorded publishes a PaymentRecordedEvent to the
// pago.registrado queue. The function never panics; any error is logged and
// returned so the caller can choose to ignore it. Messages are marked as
// persistent so they survive broker restarts.
func PublishPaymentRecorded(ctx context.Context, url string, event q.PaymentRecordedEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		slog.Warn("rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Warn("rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare so publisher and consumer can start in any order.
	if _, err := ch.QueueDeclare("pago.registrado", true, false, false, false, nil); err != nil {
		slog.Warn("rabbitmq: queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.Warn("rabbitmq: marshal event failed", "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", "pago.registrado", false, false, pub); err != nil {
		slog.Warn("rabbitmq: publish failed", "error", err)
		return err
	}
	return nil
}
