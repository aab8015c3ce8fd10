package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBookings struct {
	mu      sync.Mutex
	pending map[uuid.UUID]struct {
		showID    uuid.UUID
		createdAt time.Time
	}
	released []uuid.UUID
}

func newStubBookings() *stubBookings {
	return &stubBookings{pending: make(map[uuid.UUID]struct {
		showID    uuid.UUID
		createdAt time.Time
	})}
}

func (s *stubBookings) addPending(showID uuid.UUID, createdAt time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.pending[id] = struct {
		showID    uuid.UUID
		createdAt time.Time
	}{showID, createdAt}
	return id
}

func (s *stubBookings) Expire(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[id]
	if !ok {
		return uuid.Nil, false, nil
	}
	delete(s.pending, id)
	s.released = append(s.released, id)
	return entry.showID, true, nil
}

func (s *stubBookings) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID
	for id, entry := range s.pending {
		if entry.createdAt.Before(cutoff) {
			ids = append(ids, id)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

type stubInvalidator struct {
	mu    sync.Mutex
	shows []uuid.UUID
}

func (s *stubInvalidator) Invalidate(ctx context.Context, showID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows = append(s.shows, showID)
}

func TestHandleExpireBooking_ReleasesPending(t *testing.T) {
	bookings := newStubBookings()
	showID := uuid.New()
	bookingID := bookings.addPending(showID, time.Now())

	cache := &stubInvalidator{}
	expirer := NewExpirer(bookings, cache, zap.NewNop())

	task, _, err := NewExpireBookingTask(bookingID, time.Now())
	require.NoError(t, err)

	err = expirer.HandleExpireBooking(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{bookingID}, bookings.released)
	assert.Equal(t, []uuid.UUID{showID}, cache.shows, "seat cache invalidated for the show")
}

func TestHandleExpireBooking_AlreadyResolved(t *testing.T) {
	bookings := newStubBookings()
	cache := &stubInvalidator{}
	expirer := NewExpirer(bookings, cache, zap.NewNop())

	// Booking was paid (or already released); Expire reports no win.
	task, _, err := NewExpireBookingTask(uuid.New(), time.Now())
	require.NoError(t, err)

	err = expirer.HandleExpireBooking(context.Background(), task)
	require.NoError(t, err)

	assert.Empty(t, bookings.released)
	assert.Empty(t, cache.shows, "nothing to invalidate when the release lost")
}

func TestHandleExpireBooking_MalformedPayload(t *testing.T) {
	expirer := NewExpirer(newStubBookings(), &stubInvalidator{}, zap.NewNop())

	task := asynq.NewTask(TypeExpireBooking, []byte("not json"))

	// Retrying a malformed payload can never succeed, so it is dropped.
	assert.NoError(t, expirer.HandleExpireBooking(context.Background(), task))
}

func TestNewExpireBookingTask_DeterministicID(t *testing.T) {
	bookingID := uuid.New()

	_, opts1, err := NewExpireBookingTask(bookingID, time.Now())
	require.NoError(t, err)
	_, opts2, err := NewExpireBookingTask(bookingID, time.Now().Add(time.Minute))
	require.NoError(t, err)

	// Same booking yields the same task ID, so double-scheduling dedupes.
	assert.Equal(t, taskIDOf(t, opts1), taskIDOf(t, opts2))
}

func taskIDOf(t *testing.T, opts []asynq.Option) string {
	t.Helper()
	for _, opt := range opts {
		if opt.Type() == asynq.TaskIDOpt {
			return opt.Value().(string)
		}
	}
	t.Fatal("no task ID option")
	return ""
}

func TestSweep_ReleasesOnlyOverdue(t *testing.T) {
	bookings := newStubBookings()
	showID := uuid.New()

	overdue := bookings.addPending(showID, time.Now().Add(-15*time.Minute))
	fresh := bookings.addPending(showID, time.Now())

	cache := &stubInvalidator{}
	expirer := NewExpirer(bookings, cache, zap.NewNop())
	sweeper := NewSweeper(expirer, time.Minute, 10*time.Minute, zap.NewNop())

	sweeper.sweep(context.Background())

	assert.Equal(t, []uuid.UUID{overdue}, bookings.released)

	// The fresh booking keeps its payment window.
	bookings.mu.Lock()
	_, stillPending := bookings.pending[fresh]
	bookings.mu.Unlock()
	assert.True(t, stillPending)
}
