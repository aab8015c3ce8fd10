// Package queue publishes notification facts to the message broker. The
// notification dispatcher that turns them into emails lives outside this
// service and consumes these queues.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quickshow/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueShowReminder     = "show.reminder"
)

// ReminderNotice tells the dispatcher to remind every listed holder that
// their show starts soon.
type ReminderNotice struct {
	ShowID     string    `json:"show_id"`
	MovieTitle string    `json:"movie_title"`
	ShowTime   time.Time `json:"show_time"`
	HolderIDs  []string  `json:"holder_ids"`
}

// Publisher pushes persistent JSON messages to named queues. Dial failures
// are returned to the caller, which treats notification delivery as best
// effort.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{
		url: url,
		log: log.With(zap.String("component", "queue_publisher")),
	}
}

// EnqueueBookingConfirmed implements usecase.ConfirmationNotifier.
func (p *Publisher) EnqueueBookingConfirmed(ctx context.Context, notice usecase.ConfirmationNotice) error {
	return p.publish(ctx, QueueBookingConfirmed, notice)
}

func (p *Publisher) PublishShowReminder(ctx context.Context, notice ReminderNotice) error {
	return p.publish(ctx, QueueShowReminder, notice)
}

func (p *Publisher) publish(ctx context.Context, queueName string, payload any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("Broker dial failed", zap.Error(err), zap.String("queue", queueName))
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("Broker channel open failed", zap.Error(err), zap.String("queue", queueName))
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	// Idempotent declare; durable so facts survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", queueName, err)
	}

	err = ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.log.Error("Publish failed", zap.Error(err), zap.String("queue", queueName))
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}

	return nil
}
