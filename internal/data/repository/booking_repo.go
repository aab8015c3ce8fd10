package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// CreateWithClaim inserts the pending booking and claims every seat in
	// booking.SeatIDs inside one transaction. The primary key on
	// (show_id, seat_id) makes the claim all-or-nothing: if any seat is
	// already held the whole transaction rolls back and ErrSeatsUnavailable
	// is returned with no state changed.
	CreateWithClaim(ctx context.Context, booking *entity.Booking) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByHolder(ctx context.Context, holderID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByHolder(ctx context.Context, holderID uuid.UUID) (int64, error)

	SetPaymentSession(ctx context.Context, id uuid.UUID, sessionRef, sessionURL string) error

	// ConfirmPayment transitions pending->paid with a conditional update and
	// clears the payment link. Returns false when the booking was not in
	// pending (duplicate delivery or already expired), with nothing changed.
	ConfirmPayment(ctx context.Context, id uuid.UUID) (bool, error)

	// Expire transitions pending->expired with the same conditional update,
	// then releases the booking's seats from the ledger and deletes the
	// record, all in one transaction. Returns the show ID and true when this
	// call won the transition; false (and no mutation) when the booking was
	// already paid or gone.
	Expire(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error)

	// FindPendingBefore lists pending bookings created before the cutoff.
	// Backstop scan for expiry tasks lost between restarts.
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) CreateWithClaim(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin claim transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertBooking := `
		INSERT INTO bookings (id, order_id, show_id, holder_id, seat_ids, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.Exec(ctx, insertBooking,
		booking.ID,
		booking.OrderID,
		booking.ShowID,
		booking.HolderID,
		booking.SeatIDs,
		booking.Amount,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
		)
		return fmt.Errorf("insert booking %s: %w", booking.OrderID, err)
	}

	claimSeat := `
		INSERT INTO show_seats (show_id, seat_id, holder_id, booking_id, claimed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, seatID := range booking.SeatIDs {
		claim := entity.SeatClaim{
			ShowID:    booking.ShowID,
			SeatID:    seatID,
			HolderID:  booking.HolderID,
			BookingID: booking.ID,
			ClaimedAt: booking.CreatedAt,
		}

		_, err = tx.Exec(ctx, claimSeat,
			claim.ShowID,
			claim.SeatID,
			claim.HolderID,
			claim.BookingID,
			claim.ClaimedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				// Seat already held. Rollback undoes every claim of this
				// transaction, so losers leave no trace.
				return ErrSeatsUnavailable
			}
			r.log.Error("Failed to claim seat",
				zap.Error(err),
				zap.String("show_id", booking.ShowID.String()),
				zap.String("seat_id", seatID),
			)
			return fmt.Errorf("claim seat %s on show %s: %w", seatID, booking.ShowID.String(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit claim for booking %s: %w", booking.OrderID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, order_id, show_id, holder_id, seat_ids, amount, status, payment_ref, payment_url, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.ShowID,
		&booking.HolderID,
		&booking.SeatIDs,
		&booking.Amount,
		&booking.Status,
		&booking.PaymentRef,
		&booking.PaymentURL,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByHolder(ctx context.Context, holderID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT id, order_id, show_id, holder_id, seat_ids, amount, status, payment_ref, payment_url, created_at, updated_at
		FROM bookings
		WHERE holder_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, holderID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by holder",
			zap.Error(err),
			zap.String("holder_id", holderID.String()),
		)
		return nil, fmt.Errorf("find bookings by holder %s: %w", holderID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.OrderID,
			&booking.ShowID,
			&booking.HolderID,
			&booking.SeatIDs,
			&booking.Amount,
			&booking.Status,
			&booking.PaymentRef,
			&booking.PaymentURL,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByHolder(ctx context.Context, holderID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE holder_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, holderID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by holder",
			zap.Error(err),
			zap.String("holder_id", holderID.String()),
		)
		return 0, fmt.Errorf("count bookings by holder %s: %w", holderID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionRef, sessionURL string) error {
	query := `
		UPDATE bookings
		SET payment_ref = $2, payment_url = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, sessionRef, sessionURL)
	if err != nil {
		r.log.Error("Failed to store payment session",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("store payment session for booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) ConfirmPayment(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, payment_url = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.Exec(ctx, query, id, entity.BookingStatusPaid, entity.BookingStatusPending)
	if err != nil {
		r.log.Error("Failed to confirm payment",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("confirm payment for booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) Expire(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("begin expire transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Same compare-and-swap shape as ConfirmPayment: a paid transition that
	// committed first makes this update match zero rows.
	cas := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING show_id
	`

	var showID uuid.UUID
	err = tx.QueryRow(ctx, cas, id, entity.BookingStatusExpired, entity.BookingStatusPending).Scan(&showID)
	if err == pgx.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		r.log.Error("Failed to expire booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return uuid.Nil, false, fmt.Errorf("expire booking %s: %w", id.String(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM show_seats WHERE booking_id = $1`, id); err != nil {
		return uuid.Nil, false, fmt.Errorf("release seats for booking %s: %w", id.String(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return uuid.Nil, false, fmt.Errorf("delete expired booking %s: %w", id.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, false, fmt.Errorf("commit expire for booking %s: %w", id.String(), err)
	}

	r.log.Info("Booking expired and seats released",
		zap.String("booking_id", id.String()),
		zap.String("show_id", showID.String()),
	)

	return showID, true, nil
}

func (r *bookingRepository) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM bookings
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, entity.BookingStatusPending, cutoff, limit)
	if err != nil {
		r.log.Error("Failed to find overdue pending bookings", zap.Error(err))
		return nil, fmt.Errorf("find pending bookings before %s: %w", cutoff, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booking ID row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
