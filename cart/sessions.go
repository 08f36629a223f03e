package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nkoudou/veltrabackend/signal"
)

// Handoff is the single-use cross-navigation slot contract.
type Handoff interface {
	Put(ctx context.Context, raw string) error
	Take(ctx context.Context) (raw string, ok bool, err error)
}

// MemoryHandoff adapts the in-process mailbox to the Handoff contract.
type MemoryHandoff struct {
	box *signal.Mailbox[string]
}

func NewMemoryHandoff() *MemoryHandoff {
	return &MemoryHandoff{box: signal.NewMailbox[string]()}
}

func (h *MemoryHandoff) Put(_ context.Context, raw string) error {
	h.box.Put(raw)
	return nil
}

func (h *MemoryHandoff) Take(context.Context) (string, bool, error) {
	raw, ok := h.box.Take()
	return raw, ok, nil
}

// Session bundles everything one visitor's UI surfaces share: the store, the
// payloadless signals, and the handoff slot. The change signal fires after
// every committed mutation; OpenPanel and PopulateForm are fired by the
// surfaces themselves.
type Session struct {
	Store        *Store
	Changed      *signal.Signal
	OpenPanel    *signal.Signal
	PopulateForm *signal.Signal
	Handoff      Handoff
}

// Sessions hands out one Session per visitor, created lazily. Constructed
// once per process and injected; nothing reaches for it as ambient state.
// Entries are never evicted, and the session id is client-chosen, so memory
// grows with distinct ids for the life of the process; a scaling limitation
// under unbounded distinct visitors.
type Sessions struct {
	newMedium  func(sessionID string) Medium
	newHandoff func(sessionID string) Handoff
	log        *zap.Logger

	mu sync.Mutex
	m  map[string]*Session
}

// NewSessions builds the registry. Either factory may be nil: stores then
// degrade to the shared no-op medium and handoffs fall back to in-process
// mailboxes.
func NewSessions(newMedium func(string) Medium, newHandoff func(string) Handoff, log *zap.Logger) *Sessions {
	return &Sessions{
		newMedium:  newMedium,
		newHandoff: newHandoff,
		log:        log,
		m:          make(map[string]*Session),
	}
}

func (s *Sessions) Get(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.m[sessionID]; ok {
		return sess
	}

	var medium Medium
	if s.newMedium != nil {
		medium = s.newMedium(sessionID)
	}
	var handoff Handoff
	if s.newHandoff != nil {
		handoff = s.newHandoff(sessionID)
	} else {
		handoff = NewMemoryHandoff()
	}

	sess := &Session{
		Store:        NewStore(medium, s.log),
		Changed:      signal.New(),
		OpenPanel:    signal.New(),
		PopulateForm: signal.New(),
		Handoff:      handoff,
	}
	s.m[sessionID] = sess
	return sess
}
