// Package ratelimit implements the fixed-window rate limiter that bounds
// outbound requests per source.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stordev/sitescout/internal/telemetry"
)

// Window is a fixed-window limiter: at most quota calls proceed per window;
// once the quota is spent, callers block until the window resets. One Window
// belongs to one adapter instance. The mutex keeps it correct under
// concurrent callers even though loaders run single-threaded today.
type Window struct {
	mu    sync.Mutex
	quota int
	size  time.Duration
	clock clockwork.Clock

	start time.Time
	count int

	source string
}

// NewWindow returns a limiter allowing quota calls per window for the named
// source. A nil clock means wall time.
func NewWindow(source string, quota int, size time.Duration, clock clockwork.Clock) *Window {
	if quota <= 0 {
		quota = 1
	}
	if size <= 0 {
		size = time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Window{source: source, quota: quota, size: size, clock: clock}
}

// PerMinute returns a limiter with the conventional one-minute window.
func PerMinute(source string, quota int) *Window {
	return NewWindow(source, quota, time.Minute, nil)
}

// Wait consumes one slot, blocking until the window resets when the quota
// is spent. No backoff, no jitter: a blocked caller sleeps exactly the
// window remainder.
func (w *Window) Wait(ctx context.Context) error {
	var waited time.Duration
	for {
		w.mu.Lock()
		now := w.clock.Now()
		if w.start.IsZero() || now.Sub(w.start) >= w.size {
			w.start = now
			w.count = 0
		}
		if w.count < w.quota {
			w.count++
			w.mu.Unlock()
			if waited > 0 {
				telemetry.ObserveRateLimitDelay(w.source, waited)
			}
			return nil
		}
		remaining := w.size - now.Sub(w.start)
		w.mu.Unlock()

		timer := w.clock.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limit wait: %w", ctx.Err())
		case <-timer.Chan():
			waited += remaining
		}
	}
}
