package repository

import (
	"quickshow/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Show       ShowRepository
	Booking    BookingRepository
	SeatLedger SeatLedgerRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Show:       NewShowRepository(db, log),
		Booking:    NewBookingRepository(db, log),
		SeatLedger: NewSeatLedgerRepository(db, log),
	}
}
