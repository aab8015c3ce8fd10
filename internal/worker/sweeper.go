package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

// Sweeper is the backstop behind the scheduled release tasks. It scans for
// pending bookings whose payment window is over and releases them, covering
// tasks lost to queue disasters and bookings created during an outage.
type Sweeper struct {
	expirer     *Expirer
	interval    time.Duration
	expiryDelay time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	log         *zap.Logger
}

func NewSweeper(expirer *Expirer, interval, expiryDelay time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		expirer:     expirer,
		interval:    interval,
		expiryDelay: expiryDelay,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		log:         log.With(zap.String("component", "sweeper")),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("Sweeper starting",
		zap.Duration("interval", s.interval),
		zap.Duration("expiry_delay", s.expiryDelay))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	// Recovery pass: bookings that went overdue while the process was down
	// are released before the first tick.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped", zap.String("reason", "context cancelled"))
			return
		case <-s.stopCh:
			s.log.Info("Sweeper stopped", zap.String("reason", "stop requested"))
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.expiryDelay)

	ids, err := s.expirer.bookings.FindPendingBefore(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.log.Error("Sweep scan failed", zap.Error(err))
		return
	}

	released := 0
	for _, id := range ids {
		won, err := s.expirer.release(ctx, id)
		if err != nil {
			// Keep going; the next sweep retries this booking.
			continue
		}
		if won {
			released++
		}
	}

	if released > 0 {
		s.log.Info("Sweep released overdue bookings", zap.Int("count", released))
	} else {
		s.log.Debug("Sweep found nothing overdue")
	}
}
