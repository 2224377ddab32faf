// Package ratelimit bounds the outbound call rate to the CRM API with a
// sliding 60-second window of admission timestamps.
//
// The CRM enforces 120 requests per minute per account; the [Limiter] keeps
// crmgate under that ceiling so the server never has to handle upstream
// throttling responses. All methods are safe for concurrent use.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// Limit is the maximum number of admitted calls per trailing window.
	Limit = 120

	// Window is the width of the trailing admission window.
	Window = time.Minute
)

// Limiter admits callers at a bounded rate. Create instances with [New];
// the zero value is not usable.
type Limiter struct {
	mu       sync.Mutex
	admitted []time.Time // admission timestamps, oldest first

	limit  int
	window time.Duration

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Limiter enforcing the fixed CRM rate of [Limit] admissions
// per [Window]. The constants are not configurable; they mirror the upstream
// account limit.
func New() *Limiter {
	return newLimiter(Limit, Window, time.Now, sleepContext)
}

// newLimiter backs [New] and lets tests inject a fake clock and sleeper.
func newLimiter(limit int, window time.Duration, now func() time.Time, sleep func(context.Context, time.Duration) error) *Limiter {
	return &Limiter{
		admitted: make([]time.Time, 0, limit),
		limit:    limit,
		window:   window,
		now:      now,
		sleep:    sleep,
	}
}

// Acquire blocks until a call slot is available, then records the admission
// and returns nil. When the trailing window already holds the full quota of
// admissions, Acquire sleeps until the oldest in-window admission ages out
// and re-checks; other waiters may win the freed slot, so the check loops.
//
// The only error Acquire returns is ctx.Err() when ctx is cancelled while
// waiting. A caller that never cancels always eventually proceeds.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.admitted) < l.limit {
			l.admitted = append(l.admitted, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.window - now.Sub(l.admitted[0])
		l.mu.Unlock()

		if wait <= 0 {
			// The oldest entry aged out between the check and now; retry
			// immediately.
			continue
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// prune drops all admissions older than the trailing window. Caller must
// hold l.mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.admitted) && !l.admitted[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.admitted = append(l.admitted[:0], l.admitted[i:]...)
	}
}

// sleepContext sleeps for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
