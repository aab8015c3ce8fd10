package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeExpireBooking = "booking:expire"

type ExpireBookingPayload struct {
	BookingID uuid.UUID `json:"booking_id"`
}

// NewExpireBookingTask builds the delayed release task for a booking. The
// task ID is derived from the booking so re-scheduling the same booking is
// a no-op instead of a duplicate release.
func NewExpireBookingTask(bookingID uuid.UUID, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ExpireBookingPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeExpireBooking, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("%s:%s", TypeExpireBooking, bookingID)),
		asynq.MaxRetry(5),
	}

	return task, opts, nil
}
