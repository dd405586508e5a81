// Package workflow runs the hiring pipeline entry points against a store.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hiring-pipeline/internal/assessment"
	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/logger"
	"hiring-pipeline/internal/offer"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/trigger"
)

// Scorer produces AI assessments for a resume.
type Scorer interface {
	ScoreAll(ctx context.Context, req assessment.Request) []domain.Assessment
}

// Service holds no mutable state of its own; every call is an independent
// unit of work against the store.
type Service struct {
	store   storage.Store
	now     func() time.Time
	log     *zap.Logger
	offers  offer.Machine
	weights domain.ScoreWeights
	scorer  Scorer
	newID   func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithOfferValidity sets how long a sent offer stays open.
func WithOfferValidity(d time.Duration) Option {
	return func(s *Service) { s.offers.Validity = d }
}

// WithDefaultWeights sets the weights given to requisitions created without any.
func WithDefaultWeights(w domain.ScoreWeights) Option {
	return func(s *Service) { s.weights = w }
}

func WithScorer(sc Scorer) Option {
	return func(s *Service) { s.scorer = sc }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		now:     time.Now,
		log:     zap.NewNop(),
		offers:  offer.NewMachine(),
		weights: domain.DefaultWeights(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.offers.Now = s.clock
	s.log = s.log.Named("workflow")
	return s
}

func (s *Service) clock() time.Time { return s.now().UTC() }

// Outcome is carried by every pipeline result.
type Outcome struct {
	Triggers []trigger.Trigger `json:"triggers"`
	Warnings []string          `json:"warnings,omitempty"`
}

func (o *Outcome) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

func (o *Outcome) emit(events ...trigger.Event) {
	o.Triggers = append(o.Triggers, trigger.ClassifyAll(events...)...)
}

func (s *Service) logFor(tenantID string, fields ...zap.Field) *zap.Logger {
	return logger.Tenant(s.log, tenantID).With(fields...)
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// retained turns a refused transition into a warning. Other errors pass through.
func retained(out *Outcome, err error) error {
	var te *domain.TransitionError
	if errors.As(err, &te) {
		out.warn("candidate status retained: %s", te.Error())
		return nil
	}
	return err
}

func (s *Service) Requisition(ctx context.Context, tenantID, id string) (domain.Requisition, error) {
	return s.store.GetRequisition(ctx, tenantID, id)
}

func (s *Service) Requisitions(ctx context.Context, tenantID string, status domain.RequisitionStatus) ([]domain.Requisition, error) {
	return s.store.ListRequisitions(ctx, tenantID, status)
}

func (s *Service) Candidate(ctx context.Context, tenantID, id string) (domain.Candidate, error) {
	return s.store.GetCandidate(ctx, tenantID, id)
}

func (s *Service) Candidates(ctx context.Context, tenantID string, f storage.CandidateFilter) ([]domain.Candidate, error) {
	return s.store.ListCandidates(ctx, tenantID, f)
}

func (s *Service) Assessments(ctx context.Context, tenantID, candidateID string) ([]domain.Assessment, error) {
	if _, err := s.store.GetCandidate(ctx, tenantID, candidateID); err != nil {
		return nil, err
	}
	return s.store.ListAssessments(ctx, tenantID, candidateID)
}

func (s *Service) Interview(ctx context.Context, tenantID, id string) (domain.Interview, error) {
	return s.store.GetInterview(ctx, tenantID, id)
}

func (s *Service) Feedback(ctx context.Context, tenantID, interviewID string) ([]domain.Feedback, error) {
	if _, err := s.store.GetInterview(ctx, tenantID, interviewID); err != nil {
		return nil, err
	}
	return s.store.ListFeedback(ctx, tenantID, interviewID)
}

func (s *Service) Offer(ctx context.Context, tenantID, id string) (domain.Offer, error) {
	return s.store.GetOffer(ctx, tenantID, id)
}

func (s *Service) Offers(ctx context.Context, tenantID string, f storage.OfferFilter) ([]domain.Offer, error) {
	return s.store.ListOffers(ctx, tenantID, f)
}
