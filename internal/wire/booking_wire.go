package wire

import (
	"quickshow/internal/adaptor"
	"quickshow/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/booking - Claim seats and open a payment session
		r.Post("/api/booking", bookingHandler.CreateBooking)

		// GET /api/user/bookings - View booking history (holder's own bookings)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== PUBLIC ROUTES ====================
	// GET /api/booking/seats/{showId} - Occupied seats for a show
	r.Get("/api/booking/seats/{showId}", bookingHandler.GetOccupiedSeats)
}
