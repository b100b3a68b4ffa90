package service

import (
	"sync"
	"time"
)

// StartRateLimiter throttles how often a user may start a fresh
// assessment. A nil limiter allows everything.
type StartRateLimiter interface {
	Allow(userID string) bool
}

type memoryStartRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	buckets map[string]*startBucket
}

type startBucket struct {
	count   int
	resetAt time.Time
}

// NewStartRateLimiter builds an in-process limiter allowing max starts per
// window per user. Used when Redis is not configured.
func NewStartRateLimiter(window time.Duration, max int) StartRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryStartRateLimiter{
		window:  window,
		max:     max,
		buckets: make(map[string]*startBucket),
	}
}

func (l *memoryStartRateLimiter) Allow(userID string) bool {
	if userID == "" {
		return false
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[userID]
	if !ok || now.After(b.resetAt) {
		l.buckets[userID] = &startBucket{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if b.count >= l.max {
		return false
	}
	b.count++
	return true
}
