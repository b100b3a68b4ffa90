package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisStartAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisStartRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisStartRateLimiter builds a limiter shared across instances,
// counting starts per user in a fixed window.
func NewRedisStartRateLimiter(client *redis.Client, window time.Duration, max int) StartRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisStartRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "assessment:start:",
	}
}

func (l *redisStartRateLimiter) Allow(userID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := strings.TrimSpace(userID)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	count, err := l.client.Eval(ctx, redisStartAllowScript, []string{l.prefix + key}, seconds).Int()
	if err != nil {
		// Fail open: a broken limiter must not block the assessment.
		return true
	}
	return count <= l.max
}
