package enquiry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nkoudou/veltrabackend/config"
	"github.com/nkoudou/veltrabackend/dto"
	"github.com/nkoudou/veltrabackend/models"
)

type stubRepo struct {
	mu       sync.Mutex
	inserts  []*models.TradeEnquiry
	insertFn func(*models.TradeEnquiry) error
}

func (r *stubRepo) Insert(_ context.Context, rec *models.TradeEnquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts = append(r.inserts, rec)
	if r.insertFn != nil {
		return r.insertFn(rec)
	}
	return nil
}

func (r *stubRepo) List(context.Context, ListFilter) ([]models.TradeEnquiry, int64, error) {
	return nil, 0, nil
}

func (r *stubRepo) Get(context.Context, string) (*models.TradeEnquiry, error) {
	return nil, ErrNotFound
}

func (r *stubRepo) UpdateStatus(context.Context, string, models.TradeEnquiryStatus) error {
	return nil
}

func (r *stubRepo) insertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inserts)
}

type stubSender struct {
	mu     sync.Mutex
	sends  []string
	bodies []string
	sendFn func() error
}

func (s *stubSender) Send(_ context.Context, _, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, subject)
	s.bodies = append(s.bodies, body)
	if s.sendFn != nil {
		return s.sendFn()
	}
	return nil
}

func (s *stubSender) sendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

type stubLimiter struct {
	allow bool
	calls int
}

func (l *stubLimiter) Allow(string, int, time.Duration) bool {
	l.calls++
	return l.allow
}

func newTestService(allow bool) (*Service, *stubRepo, *stubSender, *stubLimiter) {
	repo := &stubRepo{}
	sender := &stubSender{}
	limiter := &stubLimiter{allow: allow}
	src := config.NewStaticSource(config.Defaults())
	return NewService(src, limiter, repo, sender, zap.NewNop()), repo, sender, limiter
}

func goodSubmission() dto.TradeEnquiryDTO {
	return dto.TradeEnquiryDTO{
		Name:    "Fatou Ndiaye",
		Company: "Teranga Trading",
		Email:   "fatou@teranga.example",
		Phone:   "+221 77 123 45 67",
		Country: "Senegal",
		Message: "Interested in bulk hibiscus, please send your price list.",
	}
}

func TestSubmitAcceptedPersistsAndNotifies(t *testing.T) {
	svc, repo, sender, _ := newTestService(true)

	out := svc.Submit(context.Background(), "1.2.3.4", goodSubmission())

	assert.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, config.Defaults().Messages.Success, out.Message)
	assert.Equal(t, 1, repo.insertCount())
	assert.Equal(t, 1, sender.sendCount())

	rec := repo.inserts[0]
	assert.Equal(t, "Fatou Ndiaye", rec.Name)
	assert.Equal(t, models.TradeEnquiryStatusNew, rec.Status)
}

func TestSubmitRateLimitedSkipsEverything(t *testing.T) {
	svc, repo, sender, limiter := newTestService(false)

	out := svc.Submit(context.Background(), "1.2.3.4", goodSubmission())

	assert.Equal(t, OutcomeRateLimited, out.Kind)
	assert.Equal(t, config.Defaults().Messages.RateLimited, out.Message)
	assert.Equal(t, 1, limiter.calls)
	assert.Zero(t, repo.insertCount())
	assert.Zero(t, sender.sendCount())
}

func TestSubmitRejectedReturnsIssuesWithoutSideEffects(t *testing.T) {
	svc, repo, sender, _ := newTestService(true)

	in := goodSubmission()
	in.Email = "nope"

	out := svc.Submit(context.Background(), "1.2.3.4", in)

	assert.Equal(t, OutcomeRejected, out.Kind)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, "email", out.Issues[0].Field)
	assert.Zero(t, repo.insertCount())
	assert.Zero(t, sender.sendCount())
}

func TestSubmitHoneypotFakeAccepts(t *testing.T) {
	svc, repo, sender, _ := newTestService(true)

	in := goodSubmission()
	in.Honeypot = "buy cheap watches"

	out := svc.Submit(context.Background(), "1.2.3.4", in)

	// Indistinguishable from a genuine success, but nothing happens.
	assert.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, config.Defaults().Messages.Success, out.Message)
	assert.Empty(t, out.Issues)
	assert.Zero(t, repo.insertCount())
	assert.Zero(t, sender.sendCount())
}

func TestSubmitPersistFailureStillNotifiesAndAccepts(t *testing.T) {
	svc, repo, sender, _ := newTestService(true)
	repo.insertFn = func(*models.TradeEnquiry) error { return errors.New("mongo down") }

	out := svc.Submit(context.Background(), "1.2.3.4", goodSubmission())

	assert.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, 1, sender.sendCount(), "notification runs regardless of persistence")
}

func TestSubmitNotifyFailureStillPersistsAndAccepts(t *testing.T) {
	svc, repo, sender, _ := newTestService(true)
	sender.sendFn = func() error { return errors.New("smtp refused") }

	out := svc.Submit(context.Background(), "1.2.3.4", goodSubmission())

	assert.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, 1, repo.insertCount(), "persistence runs regardless of notification")
}

func TestSubmitBothSideEffectsPanickingStillAccepts(t *testing.T) {
	svc, repo, sender, _ := newTestService(true)
	repo.insertFn = func(*models.TradeEnquiry) error { panic("repo exploded") }
	sender.sendFn = func() error { panic("sender exploded") }

	out := svc.Submit(context.Background(), "1.2.3.4", goodSubmission())

	assert.Equal(t, OutcomeAccepted, out.Kind)
}

func TestNotificationBodyEscapesHTML(t *testing.T) {
	svc, _, sender, _ := newTestService(true)

	in := goodSubmission()
	in.Name = `Fatou <script>alert(1)</script>`
	in.Message = "Quote for <b>bold</b> quantities, please and thank you."

	out := svc.Submit(context.Background(), "1.2.3.4", in)
	require.Equal(t, OutcomeAccepted, out.Kind)
	require.Equal(t, 1, sender.sendCount())

	assert.NotContains(t, sender.bodies[0], "<script>")
	assert.Contains(t, sender.bodies[0], "&lt;script&gt;")
	assert.True(t, strings.Contains(sender.bodies[0], "&lt;b&gt;bold&lt;/b&gt;"))
}

func TestNotificationSubjectCannotBreakHeaders(t *testing.T) {
	svc, _, sender, _ := newTestService(true)

	in := goodSubmission()
	in.Name = "Fatou\r\nBcc: attacker@evil.example"

	out := svc.Submit(context.Background(), "1.2.3.4", in)
	require.Equal(t, OutcomeAccepted, out.Kind)
	require.Equal(t, 1, sender.sendCount())

	subject := sender.sends[0]
	assert.NotContains(t, subject, "\r")
	assert.NotContains(t, subject, "\n")
	assert.Contains(t, subject, "Fatou")
}
