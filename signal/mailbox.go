package signal

import "sync"

// Mailbox is a single-use handoff slot: Put overwrites, Take consumes. A
// second Take without a new Put yields nothing, which is what stops a
// destination form from re-populating on back-navigation.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.value = v
	m.full = true
	m.mu.Unlock()
}

// Take returns the stored value and clears the slot.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.full {
		return zero, false
	}
	v := m.value
	m.value = zero
	m.full = false
	return v, true
}
