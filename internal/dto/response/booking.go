package response

import (
	"time"

	"quickshow/internal/data/entity"
)

type BookingResponse struct {
	ID         string               `json:"id"`
	OrderID    string               `json:"order_id"`
	ShowID     string               `json:"show_id"`
	MovieTitle string               `json:"movie_title,omitempty"`
	ShowTime   *time.Time           `json:"show_time,omitempty"`
	SeatIDs    []string             `json:"seat_ids"`
	Amount     float64              `json:"amount"`
	Status     entity.BookingStatus `json:"status"`
	PaymentURL string               `json:"payment_url,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking, show *entity.Show) BookingResponse {
	resp := BookingResponse{
		ID:        booking.ID.String(),
		OrderID:   booking.OrderID,
		ShowID:    booking.ShowID.String(),
		SeatIDs:   booking.SeatIDs,
		Amount:    booking.Amount,
		Status:    booking.Status,
		CreatedAt: booking.CreatedAt,
	}

	if booking.PaymentURL != nil {
		resp.PaymentURL = *booking.PaymentURL
	}

	if show != nil {
		resp.MovieTitle = show.MovieTitle
		showTime := show.ShowTime
		resp.ShowTime = &showTime
	}

	return resp
}

type OccupiedSeatsResponse struct {
	OccupiedSeats []string `json:"occupied_seats"`
}
