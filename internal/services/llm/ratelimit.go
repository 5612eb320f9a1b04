package llm

import (
	"context"
	"sync"
	"time"
)

// IntervalLimiter enforces a minimum interval between requests across all
// concurrent callers. Each caller reserves the next available slot under the
// mutex and then sleeps outside it, so waiters queue at interval spacing
// instead of serializing their sleeps.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewIntervalLimiter returns a limiter with the given minimum inter-request
// interval. A non-positive interval disables limiting.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{interval: interval}
}

// Wait blocks until the caller's reserved slot arrives or ctx is done.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
