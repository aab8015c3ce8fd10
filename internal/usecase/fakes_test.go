package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/internal/data/repository"
	"quickshow/internal/usecase"
	"quickshow/pkg/gateway"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
)

// memStore backs the fake repositories with the same semantics the real
// ones get from postgres: claims are all-or-nothing under one lock, status
// transitions are conditional on the current status.
type memStore struct {
	mu       sync.Mutex
	shows    map[uuid.UUID]*entity.Show
	bookings map[uuid.UUID]*entity.Booking
	claims   map[string]uuid.UUID // "showID/seatID" -> bookingID
}

func newMemStore() *memStore {
	return &memStore{
		shows:    make(map[uuid.UUID]*entity.Show),
		bookings: make(map[uuid.UUID]*entity.Booking),
		claims:   make(map[string]uuid.UUID),
	}
}

func claimKey(showID uuid.UUID, seatID string) string {
	return fmt.Sprintf("%s/%s", showID, seatID)
}

func (m *memStore) addShow(title string, showTime time.Time, price float64) *entity.Show {
	m.mu.Lock()
	defer m.mu.Unlock()

	show := &entity.Show{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		MovieTitle: title,
		ShowTime:   showTime,
		Price:      price,
	}
	m.shows[show.ID] = show
	return show
}

type fakeShowRepo struct{ store *memStore }

func (f *fakeShowRepo) Create(ctx context.Context, show *entity.Show) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.shows[show.ID] = show
	return nil
}

func (f *fakeShowRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.shows[id], nil
}

func (f *fakeShowRepo) FindUpcoming(ctx context.Context, limit, offset int) ([]*entity.Show, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var shows []*entity.Show
	for _, s := range f.store.shows {
		shows = append(shows, s)
	}
	return shows, nil
}

func (f *fakeShowRepo) CountUpcoming(ctx context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return int64(len(f.store.shows)), nil
}

func (f *fakeShowRepo) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Show, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var shows []*entity.Show
	for _, s := range f.store.shows {
		if !s.ShowTime.Before(from) && s.ShowTime.Before(to) {
			shows = append(shows, s)
		}
	}
	return shows, nil
}

type fakeBookingRepo struct{ store *memStore }

func (f *fakeBookingRepo) CreateWithClaim(ctx context.Context, booking *entity.Booking) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, seat := range booking.SeatIDs {
		if _, held := f.store.claims[claimKey(booking.ShowID, seat)]; held {
			return repository.ErrSeatsUnavailable
		}
	}

	for _, seat := range booking.SeatIDs {
		f.store.claims[claimKey(booking.ShowID, seat)] = booking.ID
	}
	clone := *booking
	f.store.bookings[booking.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	b, ok := f.store.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) FindByHolder(ctx context.Context, holderID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []*entity.Booking
	for _, b := range f.store.bookings {
		if b.HolderID == holderID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CountByHolder(ctx context.Context, holderID uuid.UUID) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var n int64
	for _, b := range f.store.bookings {
		if b.HolderID == holderID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionRef, sessionURL string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	b, ok := f.store.bookings[id]
	if !ok {
		return errors.New("booking not found")
	}
	b.PaymentRef = &sessionRef
	b.PaymentURL = &sessionURL
	return nil
}

func (f *fakeBookingRepo) ConfirmPayment(ctx context.Context, id uuid.UUID) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	b, ok := f.store.bookings[id]
	if !ok || b.Status != entity.BookingStatusPending {
		return false, nil
	}
	b.Status = entity.BookingStatusPaid
	b.PaymentURL = nil
	return true, nil
}

func (f *fakeBookingRepo) Expire(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	b, ok := f.store.bookings[id]
	if !ok || b.Status != entity.BookingStatusPending {
		return uuid.Nil, false, nil
	}

	for _, seat := range b.SeatIDs {
		delete(f.store.claims, claimKey(b.ShowID, seat))
	}
	delete(f.store.bookings, id)
	return b.ShowID, true, nil
}

func (f *fakeBookingRepo) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var ids []uuid.UUID
	for _, b := range f.store.bookings {
		if b.Status == entity.BookingStatusPending && b.CreatedAt.Before(cutoff) {
			ids = append(ids, b.ID)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

type fakeSeatLedger struct{ store *memStore }

func (f *fakeSeatLedger) OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	seats := []string{}
	prefix := showID.String() + "/"
	for key := range f.store.claims {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			seats = append(seats, key[len(prefix):])
		}
	}
	return seats, nil
}

func (f *fakeSeatLedger) Holders(ctx context.Context, showID uuid.UUID) ([]uuid.UUID, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	seen := make(map[uuid.UUID]struct{})
	var holders []uuid.UUID
	prefix := showID.String() + "/"
	for key, bookingID := range f.store.claims {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		b, ok := f.store.bookings[bookingID]
		if !ok {
			continue
		}
		if _, dup := seen[b.HolderID]; dup {
			continue
		}
		seen[b.HolderID] = struct{}{}
		holders = append(holders, b.HolderID)
	}
	return holders, nil
}

func newFakeRepository(store *memStore) *repository.Repository {
	return &repository.Repository{
		Show:       &fakeShowRepo{store: store},
		Booking:    &fakeBookingRepo{store: store},
		SeatLedger: &fakeSeatLedger{store: store},
	}
}

type fakeGateway struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, booking *entity.Booking, show *entity.Show) (*gateway.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.CheckoutSession{
		ID:  "cs_test_" + booking.ID.String(),
		URL: "https://checkout.stripe.test/" + booking.ID.String(),
	}, nil
}

type fakeScheduler struct {
	mu        sync.Mutex
	err       error
	scheduled map[uuid.UUID]time.Time
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[uuid.UUID]time.Time)}
}

func (s *fakeScheduler) ScheduleExpiry(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.scheduled[bookingID] = fireAt
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	err     error
	notices []usecase.ConfirmationNotice
}

func (n *fakeNotifier) EnqueueBookingConfirmed(ctx context.Context, notice usecase.ConfirmationNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notices = append(n.notices, notice)
	return nil
}

type stubVerifier struct {
	event stripe.Event
	err   error
}

func (v *stubVerifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	if v.err != nil {
		return stripe.Event{}, v.err
	}
	return v.event, nil
}
