package usecase

import (
	"context"
	"fmt"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/internal/data/repository"
	"quickshow/internal/dto/request"
	"quickshow/internal/dto/response"
	"quickshow/pkg/gateway"
	"quickshow/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpiryScheduler arms the compensation task that releases seats of a
// booking still unpaid at its deadline. Implementations must persist the
// deadline so it survives restarts.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error
}

type ReservationService interface {
	// CreateBooking claims the requested seats atomically, records a
	// pending booking and opens a payment session. Losing the claim race
	// is a business rejection (repository.ErrSeatsUnavailable), not a
	// system error.
	CreateBooking(ctx context.Context, holderID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// CheckAvailability is the advisory pre-check. The atomic claim inside
	// CreateBooking is the authoritative gate; this only narrows the
	// common case for callers rendering a seat map.
	CheckAvailability(ctx context.Context, showID string, seats []string) (bool, error)

	GetOccupiedSeats(ctx context.Context, showID string) ([]string, error)
	GetHolderBookings(ctx context.Context, holderID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type reservationService struct {
	repo        *repository.Repository
	cache       *repository.SeatCache
	gateway     gateway.PaymentGateway
	scheduler   ExpiryScheduler
	expiryDelay time.Duration
	log         *zap.Logger
}

func NewReservationService(
	repo *repository.Repository,
	cache *repository.SeatCache,
	gw gateway.PaymentGateway,
	scheduler ExpiryScheduler,
	expiryDelay time.Duration,
	log *zap.Logger,
) ReservationService {
	return &reservationService{
		repo:        repo,
		cache:       cache,
		gateway:     gw,
		scheduler:   scheduler,
		expiryDelay: expiryDelay,
		log:         log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) CreateBooking(ctx context.Context, holderID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeats, utils.FormatValidationErrors(errs))
	}

	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShowID, req.ShowID)
	}

	if utils.HasDuplicates(req.SeatIDs) {
		return nil, fmt.Errorf("%w: duplicate seats in request", ErrInvalidSeats)
	}

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("resolve show %s: %w", req.ShowID, err)
	}
	if show == nil {
		return nil, ErrShowNotFound
	}

	now := time.Now()
	seats := make([]string, len(req.SeatIDs))
	copy(seats, req.SeatIDs)

	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:  utils.GenerateOrderID(),
		ShowID:   showID,
		HolderID: holderID,
		SeatIDs:  seats,
		Amount:   show.Price * float64(len(seats)),
		Status:   entity.BookingStatusPending,
	}

	// The single synchronization point: exactly one concurrent claimant for
	// an overlapping seat set gets past this call.
	if err := s.repo.Booking.CreateWithClaim(ctx, booking); err != nil {
		if err == repository.ErrSeatsUnavailable {
			s.log.Info("Seats unavailable",
				zap.String("show_id", req.ShowID),
				zap.Strings("seats", seats),
			)
			return nil, repository.ErrSeatsUnavailable
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.cache.Invalidate(ctx, showID)

	// Armed before the gateway call so a payment-session failure still
	// leaves the booking reachable by the compensator.
	fireAt := booking.CreatedAt.Add(s.expiryDelay)
	if err := s.scheduler.ScheduleExpiry(ctx, booking.ID, fireAt); err != nil {
		// The periodic sweep picks the booking up if the task is lost.
		s.log.Error("Failed to schedule expiry",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, booking, show)
	if err != nil {
		// Seats stay claimed; the compensator frees them at the deadline
		// if no payment arrives through some other path.
		s.log.Error("Payment session creation failed, booking left pending",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, fmt.Errorf("open payment session: %w", err)
	}

	if err := s.repo.Booking.SetPaymentSession(ctx, booking.ID, session.ID, session.URL); err != nil {
		s.log.Error("Failed to persist payment session reference",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, fmt.Errorf("persist payment session: %w", err)
	}

	booking.PaymentRef = &session.ID
	booking.PaymentURL = &session.URL

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("holder_id", holderID.String()),
		zap.Int("seat_count", len(seats)),
		zap.Float64("amount", booking.Amount),
		zap.Time("expires_at", fireAt),
	)

	resp := response.BookingToResponse(booking, show)
	return &resp, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, showID string, seats []string) (bool, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidShowID, showID)
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("resolve show %s: %w", showID, err)
	}
	if show == nil {
		return false, nil
	}

	occupied, err := s.repo.SeatLedger.OccupiedSeats(ctx, id)
	if err != nil {
		return false, fmt.Errorf("read seat ledger for show %s: %w", showID, err)
	}

	taken := make(map[string]struct{}, len(occupied))
	for _, seat := range occupied {
		taken[seat] = struct{}{}
	}

	for _, seat := range seats {
		if _, held := taken[seat]; held {
			return false, nil
		}
	}

	return true, nil
}

func (s *reservationService) GetOccupiedSeats(ctx context.Context, showID string) ([]string, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShowID, showID)
	}

	if seats, ok := s.cache.Get(ctx, id); ok {
		return seats, nil
	}

	seats, err := s.repo.SeatLedger.OccupiedSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read occupied seats: %w", err)
	}

	s.cache.Set(ctx, id, seats)
	return seats, nil
}

func (s *reservationService) GetHolderBookings(ctx context.Context, holderID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByHolder(ctx, holderID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get holder bookings",
			zap.Error(err),
			zap.String("holder_id", holderID.String()),
		)
		return nil, fmt.Errorf("get holder bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByHolder(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("count holder bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		show, _ := s.repo.Show.FindByID(ctx, booking.ShowID)
		bookingResponses[i] = response.BookingToResponse(booking, show)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}
