package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/internal/data/repository"
	"quickshow/pkg/gateway"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// ConfirmationNotice carries fully-resolved notification content for one
// confirmed booking. The dispatcher never needs to look anything up.
type ConfirmationNotice struct {
	BookingID  string    `json:"booking_id"`
	HolderID   string    `json:"holder_id"`
	MovieTitle string    `json:"movie_title"`
	ShowTime   time.Time `json:"show_time"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
}

// ConfirmationNotifier hands a notice to the notification dispatcher.
type ConfirmationNotifier interface {
	EnqueueBookingConfirmed(ctx context.Context, notice ConfirmationNotice) error
}

type WebhookService interface {
	// HandleEvent verifies and ingests one payment-outcome event. Duplicate
	// deliveries and events for already-compensated bookings are no-ops;
	// a confirmed payment for an expired booking returns ErrLatePayment.
	HandleEvent(ctx context.Context, payload []byte, sigHeader string) error
}

type webhookService struct {
	repo     *repository.Repository
	verifier gateway.EventVerifier
	notifier ConfirmationNotifier
	log      *zap.Logger
}

func NewWebhookService(
	repo *repository.Repository,
	verifier gateway.EventVerifier,
	notifier ConfirmationNotifier,
	log *zap.Logger,
) WebhookService {
	return &webhookService{
		repo:     repo,
		verifier: verifier,
		notifier: notifier,
		log:      log.With(zap.String("service", "webhook")),
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		s.log.Warn("Webhook signature verification failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		return s.handlePaymentSucceeded(ctx, event)
	default:
		// Forward-compatible: unknown event types are acknowledged, never
		// an error.
		s.log.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *webhookService) handlePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("decode checkout session from event %s: %w", event.ID, err)
	}

	bookingTag := session.Metadata[gateway.MetadataBookingID]
	if bookingTag == "" {
		s.log.Warn("Checkout session without booking metadata",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.ID),
		)
		return nil
	}

	bookingID, err := uuid.Parse(bookingTag)
	if err != nil {
		s.log.Warn("Malformed booking tag in session metadata",
			zap.String("event_id", event.ID),
			zap.String("tag", bookingTag),
		)
		return nil
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("resolve booking %s: %w", bookingTag, err)
	}
	if booking == nil {
		// Either a duplicate after compensation deleted the record, or the
		// compensator raced ahead of this delivery. Idempotent either way.
		s.log.Info("Payment event for unknown booking, ignoring",
			zap.String("booking_id", bookingTag),
		)
		return nil
	}

	confirmed, err := s.repo.Booking.ConfirmPayment(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("confirm payment for booking %s: %w", bookingTag, err)
	}

	if !confirmed {
		return s.resolveLostTransition(ctx, bookingID)
	}

	s.log.Info("Booking confirmed",
		zap.String("booking_id", bookingTag),
		zap.String("order_id", booking.OrderID),
		zap.Float64("amount", booking.Amount),
	)

	s.dispatchConfirmation(ctx, booking)
	return nil
}

// resolveLostTransition classifies a CAS miss: duplicate delivery (already
// paid) is success, an expired booking is the paid-but-released anomaly.
func (s *webhookService) resolveLostTransition(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("re-read booking %s after lost transition: %w", bookingID.String(), err)
	}
	if booking == nil {
		// Compensator finished between our read and the update.
		s.log.Info("Booking compensated before payment confirmation landed",
			zap.String("booking_id", bookingID.String()),
		)
		return nil
	}

	switch booking.Status {
	case entity.BookingStatusPaid:
		s.log.Debug("Duplicate payment event", zap.String("booking_id", bookingID.String()))
		return nil
	case entity.BookingStatusExpired:
		// Money was charged for seats that were already released. Never
		// silently reinstated; flagged for manual reconciliation.
		s.log.Error("Payment confirmed for expired booking, manual reconciliation required",
			zap.String("booking_id", bookingID.String()),
			zap.String("order_id", booking.OrderID),
			zap.Float64("amount", booking.Amount),
		)
		return ErrLatePayment
	default:
		return fmt.Errorf("booking %s in unexpected status %s after lost transition", bookingID.String(), booking.Status)
	}
}

func (s *webhookService) dispatchConfirmation(ctx context.Context, booking *entity.Booking) {
	show, err := s.repo.Show.FindByID(ctx, booking.ShowID)
	if err != nil || show == nil {
		s.log.Warn("Show missing for confirmation notice",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}

	notice := ConfirmationNotice{
		BookingID:  booking.ID.String(),
		HolderID:   booking.HolderID.String(),
		MovieTitle: show.MovieTitle,
		ShowTime:   show.ShowTime,
		Subject:    fmt.Sprintf("Payment Confirmation: %q booked!", show.MovieTitle),
		Body: fmt.Sprintf("Your booking for %q on %s is confirmed. Seats: %v. Enjoy the show!",
			show.MovieTitle, show.ShowTime.Format(time.RFC1123), booking.SeatIDs),
	}

	// Notification delivery is best effort; payment state is already
	// committed.
	if err := s.notifier.EnqueueBookingConfirmed(ctx, notice); err != nil {
		s.log.Error("Failed to enqueue confirmation notice",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}
