package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingExpirer is the slice of the booking repository the expiry worker
// needs. The conditional update inside Expire decides the race against a
// concurrent payment confirmation.
type BookingExpirer interface {
	Expire(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

type SeatCacheInvalidator interface {
	Invalidate(ctx context.Context, showID uuid.UUID)
}

// Expirer releases the seats of bookings whose payment window ran out.
type Expirer struct {
	bookings BookingExpirer
	cache    SeatCacheInvalidator
	log      *zap.Logger
}

func NewExpirer(bookings BookingExpirer, cache SeatCacheInvalidator, log *zap.Logger) *Expirer {
	return &Expirer{
		bookings: bookings,
		cache:    cache,
		log:      log.With(zap.String("component", "expirer")),
	}
}

// HandleExpireBooking processes the delayed release task. A booking that was
// paid or already released in the meantime is left alone, so the task is safe
// to deliver more than once.
func (e *Expirer) HandleExpireBooking(ctx context.Context, task *asynq.Task) error {
	var p ExpireBookingPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		e.log.Error("Invalid expire payload", zap.Error(err))
		// Retrying cannot fix a malformed payload.
		return nil
	}

	if _, err := e.release(ctx, p.BookingID); err != nil {
		return fmt.Errorf("expire booking %s: %w", p.BookingID, err)
	}
	return nil
}

func (e *Expirer) release(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	showID, won, err := e.bookings.Expire(ctx, bookingID)
	if err != nil {
		e.log.Error("Failed to expire booking", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return false, err
	}

	if !won {
		e.log.Debug("Booking already resolved", zap.String("booking_id", bookingID.String()))
		return false, nil
	}

	e.cache.Invalidate(ctx, showID)

	e.log.Info("Booking expired, seats released",
		zap.String("booking_id", bookingID.String()),
		zap.String("show_id", showID.String()))

	return true, nil
}
