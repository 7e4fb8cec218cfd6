package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle limits attempts per key with a token bucket per key. Buckets that
// have been idle for longer than it takes to refill are dropped.
type Throttle struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle allows burst attempts per key, refilled at attemptsPerMinute.
// A non-positive attemptsPerMinute disables throttling.
func NewThrottle(attemptsPerMinute, burst int) *Throttle {
	if attemptsPerMinute <= 0 {
		return &Throttle{limit: rate.Inf, now: time.Now}
	}
	if burst <= 0 {
		burst = attemptsPerMinute
	}
	perSecond := float64(attemptsPerMinute) / 60.0
	refill := time.Duration(float64(burst)/perSecond*float64(time.Second)) + time.Minute

	return &Throttle{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    refill,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow consumes one attempt for key and reports whether it was available.
func (t *Throttle) Allow(key string) bool {
	if t.limit == rate.Inf {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweep(now)

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (t *Throttle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.idle {
		return
	}
	t.lastSweep = now
	for key, b := range t.buckets {
		if now.Sub(b.lastSeen) >= t.idle {
			delete(t.buckets, key)
		}
	}
}

func (t *Throttle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}
