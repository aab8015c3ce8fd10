package worker

import (
	"context"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/internal/queue"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UpcomingShowFinder interface {
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Show, error)
}

type ShowHolderFinder interface {
	Holders(ctx context.Context, showID uuid.UUID) ([]uuid.UUID, error)
}

type ReminderPublisher interface {
	PublishShowReminder(ctx context.Context, notice queue.ReminderNotice) error
}

// ReminderScanner periodically finds shows that start `lookahead` from now
// and publishes a reminder for everyone holding seats. It reads the stored
// show time on every pass, so a rescheduled show is reminded against its
// current start, not the one it had when the booking was made.
type ReminderScanner struct {
	shows     UpcomingShowFinder
	ledger    ShowHolderFinder
	publisher ReminderPublisher
	interval  time.Duration
	lookahead time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	log       *zap.Logger
}

func NewReminderScanner(
	shows UpcomingShowFinder,
	ledger ShowHolderFinder,
	publisher ReminderPublisher,
	interval, lookahead time.Duration,
	log *zap.Logger,
) *ReminderScanner {
	return &ReminderScanner{
		shows:     shows,
		ledger:    ledger,
		publisher: publisher,
		interval:  interval,
		lookahead: lookahead,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		log:       log.With(zap.String("component", "reminder_scanner")),
	}
}

func (r *ReminderScanner) Start(ctx context.Context) {
	r.log.Info("Reminder scanner starting",
		zap.Duration("interval", r.interval),
		zap.Duration("lookahead", r.lookahead))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Reminder scanner stopped", zap.String("reason", "context cancelled"))
			return
		case <-r.stopCh:
			r.log.Info("Reminder scanner stopped", zap.String("reason", "stop requested"))
			return
		case <-ticker.C:
			r.scan(ctx)
		}
	}
}

func (r *ReminderScanner) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *ReminderScanner) scan(ctx context.Context) {
	// Each pass covers one interval-wide slice of the lookahead horizon, so
	// every show is picked up by exactly one pass.
	from := time.Now().UTC().Add(r.lookahead)
	to := from.Add(r.interval)

	shows, err := r.shows.FindStartingBetween(ctx, from, to)
	if err != nil {
		r.log.Error("Reminder scan failed", zap.Error(err))
		return
	}

	for _, show := range shows {
		holders, err := r.ledger.Holders(ctx, show.ID)
		if err != nil {
			r.log.Error("Failed to list holders for reminder",
				zap.Error(err), zap.String("show_id", show.ID.String()))
			continue
		}
		if len(holders) == 0 {
			continue
		}

		notice := queue.ReminderNotice{
			ShowID:     show.ID.String(),
			MovieTitle: show.MovieTitle,
			ShowTime:   show.ShowTime,
			HolderIDs:  make([]string, 0, len(holders)),
		}
		for _, h := range holders {
			notice.HolderIDs = append(notice.HolderIDs, h.String())
		}

		if err := r.publisher.PublishShowReminder(ctx, notice); err != nil {
			r.log.Error("Failed to publish reminder",
				zap.Error(err), zap.String("show_id", show.ID.String()))
			continue
		}

		r.log.Info("Reminder published",
			zap.String("show_id", show.ID.String()),
			zap.Int("holders", len(holders)))
	}
}
