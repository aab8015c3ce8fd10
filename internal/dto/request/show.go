package request

import "time"

type CreateShowRequest struct {
	MovieTitle string    `json:"movie_title" validate:"required,min=1,max=200"`
	ShowTime   time.Time `json:"show_time" validate:"required"`
	Price      float64   `json:"price" validate:"required,gt=0"`
}
