package repository

import (
	"context"
	"fmt"

	"quickshow/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatLedgerRepository reads the per-show seat ledger. Writes go exclusively
// through BookingRepository.CreateWithClaim and BookingRepository.Expire so
// the ledger is never mutated with a plain read-then-write.
type SeatLedgerRepository interface {
	// OccupiedSeats returns the seat IDs currently held on a show. Empty
	// slice for a show with no claims (or an unknown show).
	OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error)

	// Holders returns the distinct holder IDs with a claim on a show.
	// Used by the reminder scan; never exposed on public endpoints.
	Holders(ctx context.Context, showID uuid.UUID) ([]uuid.UUID, error)
}

type seatLedgerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatLedgerRepository(db database.PgxIface, log *zap.Logger) SeatLedgerRepository {
	return &seatLedgerRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat_ledger")),
	}
}

func (r *seatLedgerRepository) OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	query := `
		SELECT seat_id
		FROM show_seats
		WHERE show_id = $1
		ORDER BY seat_id
	`

	rows, err := r.db.Query(ctx, query, showID)
	if err != nil {
		r.log.Error("Failed to read occupied seats",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, fmt.Errorf("read occupied seats for show %s: %w", showID.String(), err)
	}
	defer rows.Close()

	seats := []string{}
	for rows.Next() {
		var seatID string
		if err := rows.Scan(&seatID); err != nil {
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, seatID)
	}

	return seats, nil
}

func (r *seatLedgerRepository) Holders(ctx context.Context, showID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT holder_id
		FROM show_seats
		WHERE show_id = $1
	`

	rows, err := r.db.Query(ctx, query, showID)
	if err != nil {
		r.log.Error("Failed to read holders",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, fmt.Errorf("read holders for show %s: %w", showID.String(), err)
	}
	defer rows.Close()

	var holders []uuid.UUID
	for rows.Next() {
		var holderID uuid.UUID
		if err := rows.Scan(&holderID); err != nil {
			return nil, fmt.Errorf("scan holder row: %w", err)
		}
		holders = append(holders, holderID)
	}

	return holders, nil
}
