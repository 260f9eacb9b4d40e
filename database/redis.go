package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient initializes and returns a Redis client, or nil when no
// address is configured (the session cache is optional).
func NewRedisClient(addr, password string, logger *zap.Logger) *redis.Client {
	if addr == "" {
		logger.Info("REDIS_ADDR not set, checkout session cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis, checkout session cache disabled", zap.Error(err))
		return nil
	}

	logger.Info("Connected to Redis")
	return client
}
