package request

type CreateBookingRequest struct {
	ShowID  string   `json:"show_id" validate:"required,uuid4"`
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,dive,required"`
}
