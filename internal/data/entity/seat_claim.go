package entity

import (
	"time"

	"github.com/google/uuid"
)

// SeatClaim is one row of the seat ledger: a seat on a show currently held
// by a booking. Absence of a row means the seat is free.
type SeatClaim struct {
	ShowID    uuid.UUID `db:"show_id"`
	SeatID    string    `db:"seat_id"`
	HolderID  uuid.UUID `db:"holder_id"`
	BookingID uuid.UUID `db:"booking_id"`
	ClaimedAt time.Time `db:"claimed_at"`
}
