package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SeatCache is a read-through cache over the occupied-seats query, keyed
// seats:<showID>. Every ledger mutation (claim, expiry release) invalidates
// the key, so a stale entry can only ever make a seat look taken, never free.
type SeatCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewSeatCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *SeatCache {
	return &SeatCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("cache", "seats")),
	}
}

func seatKey(showID uuid.UUID) string {
	return fmt.Sprintf("seats:%s", showID.String())
}

// Get returns the cached seat list and whether the key was present.
func (c *SeatCache) Get(ctx context.Context, showID uuid.UUID) ([]string, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	val, err := c.rdb.Get(ctx, seatKey(showID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("Seat cache read failed", zap.Error(err), zap.String("show_id", showID.String()))
		return nil, false
	}

	var seats []string
	if err := json.Unmarshal([]byte(val), &seats); err != nil {
		c.log.Warn("Seat cache entry corrupt", zap.Error(err), zap.String("show_id", showID.String()))
		return nil, false
	}

	return seats, true
}

func (c *SeatCache) Set(ctx context.Context, showID uuid.UUID, seats []string) {
	if c == nil || c.rdb == nil {
		return
	}

	b, err := json.Marshal(seats)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, seatKey(showID), b, c.ttl).Err(); err != nil {
		c.log.Warn("Seat cache write failed", zap.Error(err), zap.String("show_id", showID.String()))
	}
}

func (c *SeatCache) Invalidate(ctx context.Context, showID uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Del(ctx, seatKey(showID)).Err(); err != nil {
		c.log.Warn("Seat cache invalidation failed", zap.Error(err), zap.String("show_id", showID.String()))
	}
}
