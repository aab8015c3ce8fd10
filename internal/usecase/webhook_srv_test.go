package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/internal/usecase"
	"quickshow/pkg/gateway"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func checkoutCompletedEvent(t *testing.T, bookingTag string) stripe.Event {
	t.Helper()

	session := map[string]any{
		"id": "cs_test_123",
	}
	if bookingTag != "" {
		session["metadata"] = map[string]string{gateway.MetadataBookingID: bookingTag}
	}

	raw, err := json.Marshal(session)
	require.NoError(t, err)

	return stripe.Event{
		ID:   "evt_test_1",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}
}

func seedPendingBooking(store *memStore, show *entity.Show) *entity.Booking {
	url := "https://checkout.stripe.test/pay"
	booking := &entity.Booking{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		OrderID:    "BOOK-20260901-120000-XY12",
		ShowID:     show.ID,
		HolderID:   uuid.New(),
		SeatIDs:    []string{"A1"},
		Amount:     show.Price,
		Status:     entity.BookingStatusPending,
		PaymentURL: &url,
	}

	store.mu.Lock()
	store.bookings[booking.ID] = booking
	store.claims[claimKey(show.ID, "A1")] = booking.ID
	store.mu.Unlock()

	return booking
}

func TestHandleEvent_ConfirmsPendingBooking(t *testing.T) {
	store := newMemStore()
	show := store.addShow("Inception", time.Now().Add(24*time.Hour), 10)
	booking := seedPendingBooking(store, show)

	notifier := &fakeNotifier{}
	verifier := &stubVerifier{event: checkoutCompletedEvent(t, booking.ID.String())}
	service := usecase.NewWebhookService(newFakeRepository(store), verifier, notifier, zap.NewNop())

	err := service.HandleEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	stored := store.bookings[booking.ID]
	assert.Equal(t, entity.BookingStatusPaid, stored.Status)
	assert.Nil(t, stored.PaymentURL, "payment link cleared once paid")

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, booking.ID.String(), notifier.notices[0].BookingID)
	assert.Equal(t, "Inception", notifier.notices[0].MovieTitle)
}

func TestHandleEvent_DuplicateDeliveryIsIdempotent(t *testing.T) {
	store := newMemStore()
	show := store.addShow("Inception", time.Now().Add(24*time.Hour), 10)
	booking := seedPendingBooking(store, show)

	notifier := &fakeNotifier{}
	verifier := &stubVerifier{event: checkoutCompletedEvent(t, booking.ID.String())}
	service := usecase.NewWebhookService(newFakeRepository(store), verifier, notifier, zap.NewNop())

	require.NoError(t, service.HandleEvent(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, service.HandleEvent(context.Background(), []byte("{}"), "sig"))

	assert.Equal(t, entity.BookingStatusPaid, store.bookings[booking.ID].Status)
	assert.Len(t, notifier.notices, 1, "confirmation dispatched once")
}

func TestHandleEvent_BadSignature(t *testing.T) {
	store := newMemStore()
	verifier := &stubVerifier{err: errors.New("signature mismatch")}
	service := usecase.NewWebhookService(newFakeRepository(store), verifier, &fakeNotifier{}, zap.NewNop())

	err := service.HandleEvent(context.Background(), []byte("{}"), "bad")
	assert.ErrorIs(t, err, usecase.ErrBadSignature)
}

func TestHandleEvent_UnknownBookingIsNoOp(t *testing.T) {
	store := newMemStore()
	verifier := &stubVerifier{event: checkoutCompletedEvent(t, uuid.New().String())}
	notifier := &fakeNotifier{}
	service := usecase.NewWebhookService(newFakeRepository(store), verifier, notifier, zap.NewNop())

	err := service.HandleEvent(context.Background(), []byte("{}"), "sig")
	assert.NoError(t, err)
	assert.Empty(t, notifier.notices)
}

func TestHandleEvent_MissingMetadataIsNoOp(t *testing.T) {
	store := newMemStore()
	verifier := &stubVerifier{event: checkoutCompletedEvent(t, "")}
	service := usecase.NewWebhookService(newFakeRepository(store), verifier, &fakeNotifier{}, zap.NewNop())

	assert.NoError(t, service.HandleEvent(context.Background(), []byte("{}"), "sig"))
}

func TestHandleEvent_LatePaymentIsFlagged(t *testing.T) {
	store := newMemStore()
	show := store.addShow("Inception", time.Now().Add(24*time.Hour), 10)
	booking := seedPendingBooking(store, show)

	// The compensator already marked the booking expired.
	store.mu.Lock()
	store.bookings[booking.ID].Status = entity.BookingStatusExpired
	store.mu.Unlock()

	notifier := &fakeNotifier{}
	verifier := &stubVerifier{event: checkoutCompletedEvent(t, booking.ID.String())}
	service := usecase.NewWebhookService(newFakeRepository(store), verifier, notifier, zap.NewNop())

	err := service.HandleEvent(context.Background(), []byte("{}"), "sig")
	assert.ErrorIs(t, err, usecase.ErrLatePayment)

	// Never silently reinstated.
	assert.Equal(t, entity.BookingStatusExpired, store.bookings[booking.ID].Status)
	assert.Empty(t, notifier.notices)
}

func TestPaidBookingSurvivesDeadline(t *testing.T) {
	store := newMemStore()
	show := store.addShow("Inception", time.Now().Add(24*time.Hour), 10)
	booking := seedPendingBooking(store, show)
	repo := newFakeRepository(store)

	verifier := &stubVerifier{event: checkoutCompletedEvent(t, booking.ID.String())}
	service := usecase.NewWebhookService(repo, verifier, &fakeNotifier{}, zap.NewNop())
	require.NoError(t, service.HandleEvent(context.Background(), []byte("{}"), "sig"))

	// The compensator fires after payment landed; it must change nothing.
	_, won, err := repo.Booking.Expire(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.False(t, won)

	assert.Equal(t, entity.BookingStatusPaid, store.bookings[booking.ID].Status)
	occupied, _ := repo.SeatLedger.OccupiedSeats(context.Background(), show.ID)
	assert.Contains(t, occupied, "A1", "paid seats stay claimed past the deadline")
}

func TestConfirmVersusExpire_ExactlyOneWins(t *testing.T) {
	// The payment confirmation and the expiry compensator race on the same
	// pending booking. The conditional status update lets exactly one side
	// through, whichever order they land in.
	for i := 0; i < 20; i++ {
		store := newMemStore()
		show := store.addShow("Inception", time.Now().Add(24*time.Hour), 10)
		booking := seedPendingBooking(store, show)
		repo := newFakeRepository(store)

		results := make(chan string, 2)
		go func() {
			won, err := repo.Booking.ConfirmPayment(context.Background(), booking.ID)
			assert.NoError(t, err)
			if won {
				results <- "paid"
			} else {
				results <- ""
			}
		}()
		go func() {
			_, won, err := repo.Booking.Expire(context.Background(), booking.ID)
			assert.NoError(t, err)
			if won {
				results <- "expired"
			} else {
				results <- ""
			}
		}()

		var winners []string
		for j := 0; j < 2; j++ {
			if outcome := <-results; outcome != "" {
				winners = append(winners, outcome)
			}
		}
		require.Len(t, winners, 1, "exactly one transition wins")

		switch winners[0] {
		case "paid":
			assert.Equal(t, entity.BookingStatusPaid, store.bookings[booking.ID].Status)
			// Seats stay claimed for the paid booking.
			assert.Contains(t, store.claims, claimKey(show.ID, "A1"))
		case "expired":
			// Compensation deleted the record and released the seats.
			assert.NotContains(t, store.bookings, booking.ID)
			assert.NotContains(t, store.claims, claimKey(show.ID, "A1"))
		}
	}
}

func TestHandleEvent_UnknownEventTypeIgnored(t *testing.T) {
	store := newMemStore()
	verifier := &stubVerifier{event: stripe.Event{
		ID:   "evt_test_2",
		Type: "invoice.paid",
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}}
	service := usecase.NewWebhookService(newFakeRepository(store), verifier, &fakeNotifier{}, zap.NewNop())

	assert.NoError(t, service.HandleEvent(context.Background(), []byte("{}"), "sig"))
}
