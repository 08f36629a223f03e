// Package ratelimit guards the enquiry intake with a fixed-window counter:
// deliberately burst-prone at window boundaries in exchange for O(1) memory
// per identity and no background sweeping.
package ratelimit

import (
	"sync"
	"time"
)

// FallbackIdentity is the shared bucket used when no client address is
// resolvable; all such anonymous clients are limited together.
const FallbackIdentity = "unknown"

// Limiter is swappable so a deployment spanning multiple processes can plug
// in an external shared counter store without touching the pipeline.
type Limiter interface {
	Allow(identity string, maxRequests int, window time.Duration) bool
}

type record struct {
	count         int
	windowResetAt time.Time
}

// FixedWindow is the in-memory, single-process implementation. Stale
// identities are never evicted; accepted leak for one long-running process,
// a scaling limitation under unbounded distinct identities.
type FixedWindow struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

func NewFixedWindow() *FixedWindow {
	return &FixedWindow{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Allow never fails: the worst an unknown identity gets is the shared bucket.
func (l *FixedWindow) Allow(identity string, maxRequests int, window time.Duration) bool {
	if identity == "" {
		identity = FallbackIdentity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[identity]
	if !ok || now.After(rec.windowResetAt) {
		l.records[identity] = &record{count: 1, windowResetAt: now.Add(window)}
		return true
	}
	if rec.count >= maxRequests {
		return false
	}
	rec.count++
	return true
}
