package db

import (
	"context"
	"time"

	"backend-travelapp/internal/config"
	"backend-travelapp/internal/shared/logging"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

// ConnectRedis returns nil when REDIS_ADDR is empty. An unreachable server is
// only logged: the login limiter and the notification fan-out both tolerate
// redis outages, and the client reconnects on its own.
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn.Printf("redis %s unreachable: %v", cfg.RedisAddr, err)
	}
	return client
}
