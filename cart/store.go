// Package cart implements the persistent enquiry cart: an ordered list of
// EnquiryItem kept as a JSON array under a single namespaced key in a
// pluggable medium. The store is the single source of truth for what the
// visitor wants to enquire about; UI surfaces observe mutations through a
// payloadless signal and re-read a snapshot.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/nkoudou/veltrabackend/dto"
	"github.com/nkoudou/veltrabackend/models"
)

var itemValidate = validator.New()

// ErrInvalidItem marks a write rejected by list validation, caused by the
// caller's input rather than by the medium.
var ErrInvalidItem = errors.New("invalid cart item")

// Store owns one visitor's enquiry list. Read returns a referentially stable
// snapshot: the last parsed list is cached next to the raw serialized value it
// came from, and re-parsing happens only when the raw value differs, so
// change-detecting consumers never loop on identical state.
type Store struct {
	medium   Medium
	degraded bool
	log      *zap.Logger

	mu       sync.Mutex
	lastRaw  string
	lastList models.EnquiryList
	cached   bool
}

// NewStore builds a store over the given medium. A nil medium is the
// environment guard: every operation degrades to a shared empty list instead
// of failing.
func NewStore(medium Medium, log *zap.Logger) *Store {
	degraded := medium == nil
	if degraded {
		medium = noop{}
	}
	return &Store{medium: medium, degraded: degraded, log: log}
}

// Read returns the current list. A corrupt or schema-invalid persisted blob is
// never surfaced as an error: the whole list is discarded, a warning is
// logged, and the caller sees an empty cart. Availability over recovery.
func (s *Store) Read(ctx context.Context) models.EnquiryList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

func (s *Store) readLocked(ctx context.Context) models.EnquiryList {
	raw, ok, err := s.medium.Load(ctx)
	if err != nil {
		s.log.Warn("cart medium read failed", zap.Error(err))
		return models.EnquiryList{}
	}
	if !ok {
		if !s.cached || s.lastRaw != "" {
			s.cache("", models.EnquiryList{})
		}
		return s.lastList
	}
	if s.cached && raw == s.lastRaw {
		return s.lastList
	}

	var list models.EnquiryList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.log.Warn("discarding corrupt cart state", zap.Error(err))
		s.cache(raw, models.EnquiryList{})
		return s.lastList
	}
	if err := validateList(list); err != nil {
		s.log.Warn("discarding schema-invalid cart state", zap.Error(err))
		s.cache(raw, models.EnquiryList{})
		return s.lastList
	}

	s.cache(raw, list)
	return s.lastList
}

// Add appends a new item with a fresh id and returns the new list. The
// product title is the denormalized localized display name; it is trimmed and
// NFC-normalized at add time. Duplicate entries for the same product are
// allowed.
func (s *Store) Add(ctx context.Context, in dto.AddEnquiryItemDTO) (models.EnquiryList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.EnquiryItem{
		ID:           newItemID(),
		ProductID:    strings.TrimSpace(in.ProductID),
		ProductTitle: norm.NFC.String(strings.TrimSpace(in.ProductTitle)),
		Grade:        strings.TrimSpace(in.Grade),
		PackFormat:   strings.TrimSpace(in.PackFormat),
		Quantity:     strings.TrimSpace(in.Quantity),
		MOQ:          strings.TrimSpace(in.MOQ),
		Notes:        strings.TrimSpace(in.Notes),
	}

	list := s.readLocked(ctx)
	next := make(models.EnquiryList, 0, len(list)+1)
	next = append(next, list...)
	next = append(next, item)

	return s.persistLocked(ctx, next)
}

// Update merges fields into the item matching id. Unknown id is a no-op: the
// unchanged list is returned.
func (s *Store) Update(ctx context.Context, id string, in dto.UpdateEnquiryItemDTO) (models.EnquiryList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.readLocked(ctx)
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list, nil
	}

	next := make(models.EnquiryList, len(list))
	copy(next, list)
	merge := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	merge(&next[idx].Grade, in.Grade)
	merge(&next[idx].PackFormat, in.PackFormat)
	merge(&next[idx].Quantity, in.Quantity)
	merge(&next[idx].MOQ, in.MOQ)
	merge(&next[idx].Notes, in.Notes)

	return s.persistLocked(ctx, next)
}

// Remove filters out the item matching id. Order of the remaining items is
// preserved.
func (s *Store) Remove(ctx context.Context, id string) (models.EnquiryList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.readLocked(ctx)
	next := make(models.EnquiryList, 0, len(list))
	for _, it := range list {
		if it.ID != id {
			next = append(next, it)
		}
	}
	return s.persistLocked(ctx, next)
}

// Clear erases the persisted key entirely.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.medium.Delete(ctx); err != nil {
		s.log.Error("cart clear failed", zap.Error(err))
		return err
	}
	s.cache("", models.EnquiryList{})
	return nil
}

// persistLocked validates the whole candidate list before writing. A write
// that would produce invalid state is rejected and logged, leaving the prior
// persisted state intact.
func (s *Store) persistLocked(ctx context.Context, next models.EnquiryList) (models.EnquiryList, error) {
	if s.degraded {
		return s.readLocked(ctx), nil
	}
	if err := validateList(next); err != nil {
		s.log.Error("rejecting invalid cart write", zap.Error(err))
		return s.readLocked(ctx), fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	raw, err := json.Marshal(next)
	if err != nil {
		s.log.Error("cart marshal failed", zap.Error(err))
		return s.readLocked(ctx), err
	}
	if err := s.medium.Save(ctx, string(raw)); err != nil {
		s.log.Error("cart write failed", zap.Error(err))
		return s.readLocked(ctx), err
	}

	s.cache(string(raw), next)
	return s.lastList, nil
}

func (s *Store) cache(raw string, list models.EnquiryList) {
	s.lastRaw = raw
	s.lastList = list
	s.cached = true
}

func validateList(list models.EnquiryList) error {
	seen := make(map[string]struct{}, len(list))
	for i, it := range list {
		if err := itemValidate.Struct(it); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item %d: duplicate id %s", i, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// newItemID is a timestamp plus random suffix; ids are never reused.
func newItemID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
