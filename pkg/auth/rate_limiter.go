package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter bounds how often a single caller may perform an action.
type RateLimiter interface {
	Consume(ctx context.Context, key string) (Result, error)
	Reset(ctx context.Context, key string) error
}

// Result describes the outcome of a Consume call.
type Result struct {
	Limited    bool
	Remaining  int
	RetryAfter time.Duration
}

// SlidingWindowLimiter implements sliding window rate limiting. Each key
// holds the timestamps of its accepted requests within the trailing window;
// prune, check and append happen under the window's lock so a rejected
// attempt never counts toward the window.
type SlidingWindowLimiter struct {
	mu         sync.RWMutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

type window struct {
	requests []time.Time
	mu       sync.Mutex
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// WithClock overrides the limiter's clock. Used by tests to simulate time.
func (l *SlidingWindowLimiter) WithClock(now func() time.Time) *SlidingWindowLimiter {
	l.now = now
	return l
}

// Consume records an attempt for the key and reports whether it is allowed.
// A limited attempt is not recorded.
func (l *SlidingWindowLimiter) Consume(ctx context.Context, key string) (Result, error) {
	l.mu.Lock()
	w, exists := l.windows[key]
	if !exists {
		w = &window{
			requests: make([]time.Time, 0),
		}
		l.windows[key] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)

	// Remove old requests outside the window
	validRequests := make([]time.Time, 0, len(w.requests))
	for _, reqTime := range w.requests {
		if reqTime.After(windowStart) {
			validRequests = append(validRequests, reqTime)
		}
	}
	w.requests = validRequests

	if len(w.requests) >= l.limit {
		retryAfter := w.requests[0].Add(l.windowSize).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{
			Limited:    true,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	w.requests = append(w.requests, now)
	return Result{
		Limited:   false,
		Remaining: l.limit - len(w.requests),
	}, nil
}

// Reset clears the rate limit window for a key
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}
