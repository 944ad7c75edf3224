package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/locaspot/booking-api/internal/logger"
)

const auditLogPath = "logs/reservations.log"

// StartAuditConsumer connects to RabbitMQ and consumes the reservation
// queues, appending one human-readable line per event to
// logs/reservations.log. It runs a reconnect loop with exponential backoff
// and never returns under normal operation; run it in its own goroutine.
// Messages that fail to process are rejected without requeue so a poison
// message cannot loop forever.
func StartAuditConsumer(url string) {
	log := logger.Get()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("audit-consumer: dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Warn().Err(err).Msg("audit-consumer: consume loop ended, reconnecting")
			_ = conn.Close()
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

	log := logger.Get()
	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("audit-consumer: set QoS failed")
	}

	for _, q := range []string{ReservationCreatedQueue, ReservationStatusQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
	}

	created, err := ch.Consume(ReservationCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ReservationCreatedQueue, err)
	}
	status, err := ch.Consume(ReservationStatusQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ReservationStatusQueue, err)
	}

	for {
		var d amqp.Delivery
		var ok bool
		var queueName string
		select {
		case d, ok = <-created:
			queueName = ReservationCreatedQueue
		case d, ok = <-status:
			queueName = ReservationStatusQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := handleMessage(queueName, d.Body); err != nil {
			log.Warn().Err(err).Str("queue", queueName).Msg("audit-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

func handleMessage(queueName string, body []byte) error {
	var line string
	switch queueName {
	case ReservationCreatedQueue:
		var ev ReservationCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Reservation created | reservation_id=%d | user_id=%d | product_id=%d | product=%q | %s -> %s | total=%.2f | persons=%d\n",
			ev.CreatedAt, ev.ReservationID, ev.UserID, ev.ProductID, ev.ProductTitle,
			ev.StartDate, ev.EndDate, ev.TotalPrice, ev.TotalPersons)
	case ReservationStatusQueue:
		var ev ReservationStatusEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Reservation status | reservation_id=%d | user_id=%d | %s -> %s | changed_by=%d\n",
			ev.ChangedAt, ev.ReservationID, ev.UserID, ev.OldStatus, ev.NewStatus, ev.ChangedBy)
	default:
		return fmt.Errorf("unknown queue %q", queueName)
	}
	return appendAuditLine(line)
}

func appendAuditLine(line string) error {
	if err := os.MkdirAll(filepath.Dir(auditLogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(auditLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
