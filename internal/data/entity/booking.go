package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending BookingStatus = "pending"
	BookingStatusPaid    BookingStatus = "paid"
	BookingStatusExpired BookingStatus = "expired"
)

// Booking is a single reservation attempt. SeatIDs is fixed at creation.
// Status only ever moves pending->paid or pending->expired, and only through
// the conditional updates in the booking repository.
type Booking struct {
	Base
	OrderID    string        `db:"order_id"`
	ShowID     uuid.UUID     `db:"show_id"`
	HolderID   uuid.UUID     `db:"holder_id"`
	SeatIDs    []string      `db:"seat_ids"`
	Amount     float64       `db:"amount"`
	Status     BookingStatus `db:"status"`
	PaymentRef *string       `db:"payment_ref"`
	PaymentURL *string       `db:"payment_url"`
}
