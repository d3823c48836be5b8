package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
)

const notificationQueue = "rental.notifications"

// AMQPNotifier publishes notifications to a durable RabbitMQ queue for the
// downstream dispatcher (email/SMS) to consume. A connection is dialed per
// dispatch; the call volume is one message per status transition, so keeping
// a channel pool is not worth the failure modes.
type AMQPNotifier struct {
	url    string
	logger *log.Logger
}

func NewAMQPNotifier(url string, logger *log.Logger) *AMQPNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &AMQPNotifier{url: url, logger: logger}
}

type notificationMessage struct {
	EventType   string            `json:"event_type"`
	BookingID   string            `json:"booking_id"`
	BookingCode string            `json:"booking_code"`
	VehicleName string            `json:"vehicle_name,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	SentAt      time.Time         `json:"sent_at"`
}

func (n *AMQPNotifier) Dispatch(ctx context.Context, notification app.Notification) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		n.logger.Printf("amqp dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		n.logger.Printf("amqp channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(notificationQueue, true, false, false, false, nil); err != nil {
		n.logger.Printf("amqp queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(notificationMessage{
		EventType:   notification.EventType,
		BookingID:   notification.BookingID,
		BookingCode: notification.BookingCode,
		VehicleName: notification.VehicleName,
		Details:     notification.Details,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                // default exchange
		notificationQueue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
