// Package signal carries the in-process cross-component contract: a
// payloadless change signal plus a one-shot handoff mailbox. Observers re-read
// the store themselves instead of receiving data in the event, so no component
// ever holds an authoritative copy.
package signal

import "sync"

// Signal is a payloadless publish/subscribe bus. Publish invokes every
// subscriber synchronously before returning; bursts are not coalesced, which
// is fine because subscribers only re-fetch idempotent snapshots.
type Signal struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func New() *Signal {
	return &Signal{subs: make(map[int]func())}
}

// Subscribe registers fn and returns its unsubscribe function. Unsubscribing
// twice is harmless.
func (s *Signal) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Signal) Publish() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// Invoked outside the lock so a subscriber may unsubscribe itself.
	for _, fn := range fns {
		fn()
	}
}
