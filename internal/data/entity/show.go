package entity

import (
	"time"
)

// Show is one scheduled screening. Seat occupancy for a show lives in the
// seat ledger (show_seats), never on the show row itself.
type Show struct {
	Base
	MovieTitle string    `db:"movie_title"`
	ShowTime   time.Time `db:"show_time"`
	Price      float64   `db:"price"`
}
