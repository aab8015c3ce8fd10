package database

import (
	"context"
	"fmt"
	"time"

	"quickshow/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects the client used by the seat cache. Task queue workers
// hold their own asynq connection to the same instance.
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return rdb, nil
}
