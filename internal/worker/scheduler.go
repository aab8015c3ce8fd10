package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ExpiryScheduler enqueues the durable release task for a booking. The task
// lives in redis, so a scheduled release survives process restarts.
type ExpiryScheduler struct {
	client *asynq.Client
	log    *zap.Logger
}

func NewExpiryScheduler(client *asynq.Client, log *zap.Logger) *ExpiryScheduler {
	return &ExpiryScheduler{
		client: client,
		log:    log.With(zap.String("component", "expiry_scheduler")),
	}
}

func (s *ExpiryScheduler) ScheduleExpiry(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error {
	task, opts, err := NewExpireBookingTask(bookingID, fireAt)
	if err != nil {
		return fmt.Errorf("build expire task: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		// The same booking was already scheduled; the existing task wins.
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			s.log.Debug("Expiry already scheduled", zap.String("booking_id", bookingID.String()))
			return nil
		}
		return fmt.Errorf("enqueue expire task: %w", err)
	}

	s.log.Info("Expiry scheduled",
		zap.String("booking_id", bookingID.String()),
		zap.String("task_id", info.ID),
		zap.Time("fire_at", fireAt))

	return nil
}
