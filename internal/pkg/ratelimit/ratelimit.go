package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// CheckCouponAttempt limits coupon validation attempts per client IP.
// Allows up to 20 attempts per 15 minutes.
func (l *Limiter) CheckCouponAttempt(ctx context.Context, ip string) (bool, int64, error) {
	key := fmt.Sprintf("ratelimit:coupon:%s", ip)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment coupon attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		l.client.Expire(ctx, key, 15*time.Minute)
	}

	maxAttempts := int64(20)
	remaining := maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= maxAttempts, remaining, nil
}

// ResetCouponAttempts clears the attempt counter after a successful order.
func (l *Limiter) ResetCouponAttempts(ctx context.Context, ip string) error {
	key := fmt.Sprintf("ratelimit:coupon:%s", ip)
	return l.client.Del(ctx, key).Err()
}
