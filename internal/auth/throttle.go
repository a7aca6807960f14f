package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failKeyPrefix = "auth:fail:" // Failed login counter per client IP: auth:fail:{ip}
	lockKeyPrefix = "auth:lock:" // Active lockout marker per client IP: auth:lock:{ip}

	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

// Limiter is what the login handler needs from a throttle.
type Limiter interface {
	Locked(ctx context.Context, ip string) (time.Duration, error)
	RecordFailure(ctx context.Context, ip string) error
	Reset(ctx context.Context, ip string) error
}

// Throttle counts failed logins per client IP in Redis and locks the IP
// out after too many failures in a window. Redis keeps the counters
// shared across instances and self-expiring.
type Throttle struct {
	client *redis.Client
}

func NewThrottle(client *redis.Client) *Throttle {
	return &Throttle{client: client}
}

// Locked returns how long the IP remains locked out, zero if it isn't.
// Redis failures report as unlocked; login availability wins over
// throttling accuracy.
func (t *Throttle) Locked(ctx context.Context, ip string) (time.Duration, error) {
	ttl, err := t.client.TTL(ctx, lockKeyPrefix+ip).Result()
	if err != nil {
		log.Printf("login throttle: ttl check failed: %v", err)
		return 0, err
	}
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

// RecordFailure bumps the failure counter and, once the attempt budget is
// spent, arms the lockout key.
func (t *Throttle) RecordFailure(ctx context.Context, ip string) error {
	failKey := failKeyPrefix + ip

	pipe := t.client.Pipeline()
	count := pipe.Incr(ctx, failKey)
	pipe.Expire(ctx, failKey, loginWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	if count.Val() >= maxLoginAttempts {
		if err := t.client.Set(ctx, lockKeyPrefix+ip, "1", lockDuration).Err(); err != nil {
			return fmt.Errorf("arm login lock: %w", err)
		}
	}
	return nil
}

// Reset clears the counters after a successful login.
func (t *Throttle) Reset(ctx context.Context, ip string) error {
	return t.client.Del(ctx, failKeyPrefix+ip, lockKeyPrefix+ip).Err()
}
