// Package enquiry is the trade enquiry intake pipeline: rate limit, validate,
// honeypot, then two independent best-effort side effects (persist, notify).
package enquiry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nkoudou/veltrabackend/config"
	"github.com/nkoudou/veltrabackend/dto"
	"github.com/nkoudou/veltrabackend/mailer"
	"github.com/nkoudou/veltrabackend/models"
	"github.com/nkoudou/veltrabackend/ratelimit"
	"github.com/nkoudou/veltrabackend/validation"
)

type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota
	OutcomeRejected
	OutcomeRateLimited
)

// Outcome is transient: what the HTTP layer needs to answer the caller,
// nothing more. Infrastructure faults never show up here.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Issues  []dto.FieldIssue
}

type Service struct {
	cfg     config.Source
	limiter ratelimit.Limiter
	repo    Repository
	sender  mailer.EmailSender
	log     *zap.Logger
}

func NewService(cfg config.Source, limiter ratelimit.Limiter, repo Repository, sender mailer.EmailSender, log *zap.Logger) *Service {
	return &Service{
		cfg:     cfg,
		limiter: limiter,
		repo:    repo,
		sender:  sender,
		log:     log,
	}
}

// Submit runs the pipeline for one submission. Once input is structurally
// valid the caller is told it succeeded: persistence and notification are
// independent failure domains, each isolated and logged, neither allowed to
// suppress the other or alter the response.
func (s *Service) Submit(ctx context.Context, identity string, in dto.TradeEnquiryDTO) Outcome {
	cfg := s.cfg.Current()

	// Denied requests get a generic message and no payload logging.
	if !s.limiter.Allow(identity, cfg.RateLimitMaxRequests, cfg.RateLimitWindow()) {
		return Outcome{Kind: OutcomeRateLimited, Message: cfg.Messages.RateLimited}
	}

	schema := validation.NewSchema(cfg.Validation)
	clean, issues := schema.Validate(in)
	if len(issues) > 0 {
		return Outcome{Kind: OutcomeRejected, Message: cfg.Messages.Invalid, Issues: issues}
	}

	// A bot that gets a rejection adapts; one that gets a success stops
	// retrying. Respond exactly like a genuine success, do nothing.
	if schema.Honeypot(in) {
		s.log.Info("honeypot tripped, fake-accepting", zap.String("identity", identity))
		return Outcome{Kind: OutcomeAccepted, Message: cfg.Messages.Success}
	}

	rec := &models.TradeEnquiry{
		Name:            clean.Name,
		Company:         clean.Company,
		Email:           clean.Email,
		Phone:           clean.Phone,
		Country:         clean.Country,
		Role:            clean.Role,
		ProductInterest: clean.ProductInterest,
		Quantity:        clean.Quantity,
		Message:         clean.Message,
		Status:          models.TradeEnquiryStatusNew,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.persist(ctx, rec)
	}()
	go func() {
		defer wg.Done()
		s.notify(ctx, cfg.Notify, rec)
	}()
	wg.Wait()

	return Outcome{Kind: OutcomeAccepted, Message: cfg.Messages.Success}
}

func (s *Service) persist(ctx context.Context, rec *models.TradeEnquiry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("trade enquiry persistence panicked", zap.Any("panic", r))
		}
	}()
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.log.Error("trade enquiry persistence failed", zap.String("email", rec.Email), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, cfg config.Notify, rec *models.TradeEnquiry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("trade enquiry notification panicked", zap.Any("panic", r))
		}
	}()
	subject, body := buildNotification(cfg, rec)
	if err := s.sender.Send(ctx, cfg.Recipient, subject, body); err != nil {
		s.log.Error("trade enquiry notification failed", zap.String("recipient", cfg.Recipient), zap.Error(err))
	}
}
