package response

import (
	"time"

	"quickshow/internal/data/entity"
)

type ShowResponse struct {
	ID         string    `json:"id"`
	MovieTitle string    `json:"movie_title"`
	ShowTime   time.Time `json:"show_time"`
	Price      float64   `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}

func ShowToResponse(show *entity.Show) ShowResponse {
	return ShowResponse{
		ID:         show.ID.String(),
		MovieTitle: show.MovieTitle,
		ShowTime:   show.ShowTime,
		Price:      show.Price,
		CreatedAt:  show.CreatedAt,
	}
}
