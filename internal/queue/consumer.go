// Package queue contains the background consumer that listens to the
// pago.registrado queue and appends structured lines to logs/pagos.log.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const paymentQueueName = "pago.registrado"

// BrokerURL returns the configured broker address, or empty when no broker
// is configured. The queue is optional infrastructure; without it the
// server simply skips publishing.
func BrokerURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return os.Getenv("AMQP_URL")
}

// StartPaymentConsumer connects to RabbitMQ, declares the pago.registrado
// queue (durable) and starts consuming. Each message is appended to
// logs/pagos.log in a single-line, human-friendly format. The function runs
// a reconnect loop with exponential backoff and never stops the server:
// processing errors are logged and the offending message is rejected
// without requeue.
func StartPaymentConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			slog.Warn("payment-consumer: dial broker failed", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			slog.Warn("payment-consumer: consume loop ended, reconnecting", "error", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(paymentQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(paymentQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			slog.Error("payment-consumer: handle message failed", "error", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev PaymentRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "pagos.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Pago registrado | pago_id=%d | invitado=%q | monto=%.2f | metodo=%q | estado=%s | saldo=%.2f | por=%s\n",
		ev.RegistradoEn, ev.PagoID, ev.InvitadoNombre, ev.Monto, ev.MetodoPago, ev.EstadoPago, ev.SaldoPendiente, ev.RegistradoPor)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
