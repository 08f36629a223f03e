package cart

import (
	"context"
	"sync"
)

// Medium is the persistence surface the store writes through: one serialized
// value under one namespaced key.
type Medium interface {
	// Load returns the raw serialized list. ok is false when the key has
	// never been written or was cleared.
	Load(ctx context.Context) (raw string, ok bool, err error)
	Save(ctx context.Context, raw string) error
	Delete(ctx context.Context) error
}

// noop stands in when no persistence medium is available; every operation
// degrades to a shared empty list instead of failing.
type noop struct{}

func (noop) Load(context.Context) (string, bool, error) { return "", false, nil }
func (noop) Save(context.Context, string) error         { return nil }
func (noop) Delete(context.Context) error               { return nil }

// MemoryMedium keeps the serialized list in process memory. Used in tests and
// as the fallback when Redis is not configured.
type MemoryMedium struct {
	mu  sync.Mutex
	raw string
	set bool
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{}
}

func (m *MemoryMedium) Load(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw, m.set, nil
}

func (m *MemoryMedium) Save(_ context.Context, raw string) error {
	m.mu.Lock()
	m.raw = raw
	m.set = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryMedium) Delete(context.Context) error {
	m.mu.Lock()
	m.raw = ""
	m.set = false
	m.mu.Unlock()
	return nil
}

// Seed overwrites the stored value directly, bypassing the store. Test helper
// for corrupt-state scenarios.
func (m *MemoryMedium) Seed(raw string) {
	m.mu.Lock()
	m.raw = raw
	m.set = true
	m.mu.Unlock()
}
