package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles failed login attempts per employee number.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginLimiter constructs a limiter. Defaults: 5 attempts per 15 minutes.
func NewLoginLimiter(client *redis.Client, maxAttempts int64, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *LoginLimiter) key(employeeNumber int) string {
	return fmt.Sprintf("login:attempts:%d", employeeNumber)
}

// Allow reports whether another attempt is permitted. A nil limiter or an
// unreachable Redis never locks anyone out.
func (l *LoginLimiter) Allow(ctx context.Context, employeeNumber int) bool {
	if l == nil || l.client == nil {
		return true
	}
	n, err := l.client.Get(ctx, l.key(employeeNumber)).Int64()
	if err != nil {
		return true
	}
	return n < l.maxAttempts
}

// RecordFailure bumps the failed-attempt counter.
func (l *LoginLimiter) RecordFailure(ctx context.Context, employeeNumber int) {
	if l == nil || l.client == nil {
		return
	}
	key := l.key(employeeNumber)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	_, _ = pipe.Exec(ctx)
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, employeeNumber int) {
	if l == nil || l.client == nil {
		return
	}
	_ = l.client.Del(ctx, l.key(employeeNumber)).Err()
}
