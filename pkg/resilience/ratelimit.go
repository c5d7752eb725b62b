package resilience

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces, per provider key, that at most maxCalls calls are admitted
// within any trailing window. Providers never block each other; concurrent
// callers for the same provider serialize through that provider's lock.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*providerWindow

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

type providerWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		windows: make(map[string]*providerWindow),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Acquire blocks until one more call for provider fits inside the trailing
// window, then records the admission. maxCalls <= 0 means unlimited.
func (l *Limiter) Acquire(ctx context.Context, provider string, maxCalls int, window time.Duration) error {
	if maxCalls <= 0 {
		return nil
	}

	w := l.windowFor(provider)

	for {
		w.mu.Lock()
		now := l.now()
		cutoff := now.Add(-window)

		kept := w.stamps[:0]
		for _, ts := range w.stamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		w.stamps = kept

		if len(w.stamps) < maxCalls {
			w.stamps = append(w.stamps, now)
			w.mu.Unlock()
			return nil
		}

		// Wait until the oldest stamp ages out, then re-check from the top:
		// other waiters may have been admitted while we slept.
		wait := w.stamps[0].Sub(cutoff)
		w.mu.Unlock()

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (l *Limiter) windowFor(provider string) *providerWindow {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[provider]
	if !ok {
		w = &providerWindow{}
		l.windows[provider] = w
	}
	return w
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
