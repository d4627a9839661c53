package auth

import (
	"context"
	"strings"
	"time"

	"backend-travelapp/internal/shared/logging"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter is a fixed-window counter of login attempts per email, kept in
// redis. A nil limiter, a nil client or a redis failure lets the attempt
// through.
type LoginLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewLoginLimiter(rdb *redis.Client, limit int, window time.Duration) *LoginLimiter {
	if rdb == nil || limit <= 0 {
		return nil
	}
	return &LoginLimiter{rdb: rdb, limit: int64(limit), window: window}
}

func (l *LoginLimiter) Allow(ctx context.Context, email string) bool {
	if l == nil {
		return true
	}
	key := "login_attempts:" + strings.ToLower(strings.TrimSpace(email))

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		logging.Warn.Printf("login limiter: %v", err)
		return true
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			logging.Warn.Printf("login limiter expire: %v", err)
		}
	}
	return count <= l.limit
}
