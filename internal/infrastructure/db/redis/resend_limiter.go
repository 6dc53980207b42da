package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultResendLimit  = 5
	defaultResendWindow = time.Hour
)

// ResendLimiter bounds confirmation/reset mail requests per email address
// using an expiring Redis counter. Key format: verify:<email>
type ResendLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewResendLimiter creates a ResendLimiter. Non-positive limit or window fall
// back to 5 requests per hour.
func NewResendLimiter(client *redis.Client, limit int64, window time.Duration) *ResendLimiter {
	if limit <= 0 {
		limit = defaultResendLimit
	}
	if window <= 0 {
		window = defaultResendWindow
	}
	return &ResendLimiter{client: client, limit: limit, window: window}
}

// Allow records one request for email and reports whether it is within the
// limit. The window starts at the first request and is not sliding.
func (l *ResendLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := l.key(email)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("resend limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("resend limit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}

func (l *ResendLimiter) key(email string) string {
	return fmt.Sprintf("verify:%s", email)
}
