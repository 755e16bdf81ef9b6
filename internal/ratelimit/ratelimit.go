// Package ratelimit provides a per-source-address attempt counter with a
// sliding reset window, used to throttle reveal attempts at the HTTP
// boundary.
package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter counts attempts per source address. State is process-local:
// separate server instances do not share counters.
type Limiter struct {
	mu          sync.Mutex
	attempts    map[string]*entry
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// New creates a Limiter allowing 5 attempts per address in a 15 minute
// window.
func New() *Limiter {
	return &Limiter{
		attempts:    make(map[string]*entry),
		maxAttempts: defaultMaxAttempts,
		window:      defaultWindow,
		now:         time.Now,
	}
}

// IsLimited records an attempt from addr and reports whether addr has gone
// over the allowed attempts for the current window. Expired entries are
// purged lazily on each call; the first attempt after a window lapses
// starts a fresh window with count 1.
func (l *Limiter) IsLimited(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.attempts {
		if e.resetAt.Before(now) {
			delete(l.attempts, key)
		}
	}

	e, ok := l.attempts[addr]
	if !ok {
		l.attempts[addr] = &entry{count: 1, resetAt: now.Add(l.window)}
		return false
	}

	e.count++
	return e.count > l.maxAttempts
}

// Reset unconditionally clears the counter for addr. Administrative
// override only, never reachable from untrusted callers.
func (l *Limiter) Reset(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, addr)
}
