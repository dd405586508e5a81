package storage

import (
	"context"
	"time"

	"hiring-pipeline/internal/domain"
)

// CandidateFilter narrows ListCandidates. Zero fields match everything.
type CandidateFilter struct {
	RequisitionID string                 `json:"requisition_id"`
	Status        domain.CandidateStatus `json:"status"`
	Limit         int                    `json:"limit"`
}

// OfferFilter narrows ListOffers.
type OfferFilter struct {
	CandidateID string               `json:"candidate_id"`
	Statuses    []domain.OfferStatus `json:"statuses"`
	Limit       int                  `json:"limit"`
}

// Repo is the tenant-scoped persistence surface. Every read takes the tenant
// and a tenant mismatch is reported as domain.ErrNotFound.
//
// Update methods write the entity as given, including its new Version, and
// only if the stored version still equals expected. A lost race returns
// domain.ErrConcurrencyConflict.
type Repo interface {
	CreateRequisition(ctx context.Context, r *domain.Requisition) error
	GetRequisition(ctx context.Context, tenantID, id string) (domain.Requisition, error)
	ListRequisitions(ctx context.Context, tenantID string, status domain.RequisitionStatus) ([]domain.Requisition, error)
	UpdateRequisition(ctx context.Context, r *domain.Requisition, expected int) error

	CreateCandidate(ctx context.Context, c *domain.Candidate) error
	GetCandidate(ctx context.Context, tenantID, id string) (domain.Candidate, error)
	ListCandidates(ctx context.Context, tenantID string, f CandidateFilter) ([]domain.Candidate, error)
	UpdateCandidate(ctx context.Context, c *domain.Candidate, expected int) error

	InsertAssessment(ctx context.Context, a *domain.Assessment) error
	ListAssessments(ctx context.Context, tenantID, candidateID string) ([]domain.Assessment, error)

	CreateInterview(ctx context.Context, i *domain.Interview) error
	GetInterview(ctx context.Context, tenantID, id string) (domain.Interview, error)
	// LockInterview reads the interview and holds its row until the
	// transaction ends, so feedback counting sees every committed submission.
	LockInterview(ctx context.Context, tenantID, id string) (domain.Interview, error)
	ListInterviews(ctx context.Context, tenantID, candidateID string) ([]domain.Interview, error)
	UpdateInterview(ctx context.Context, i *domain.Interview, expected int) error
	// SaveAggregation writes consensus once. It fails with
	// domain.ErrConcurrencyConflict when the interview was already aggregated.
	SaveAggregation(ctx context.Context, i *domain.Interview, expected int) error

	// InsertFeedback fails with domain.ErrDuplicateFeedback when the
	// interviewer already submitted for the interview.
	InsertFeedback(ctx context.Context, f *domain.Feedback) error
	ListFeedback(ctx context.Context, tenantID, interviewID string) ([]domain.Feedback, error)

	CreateOffer(ctx context.Context, o *domain.Offer) error
	GetOffer(ctx context.Context, tenantID, id string) (domain.Offer, error)
	ListOffers(ctx context.Context, tenantID string, f OfferFilter) ([]domain.Offer, error)
	UpdateOffer(ctx context.Context, o *domain.Offer, expected int) error
	// ListExpiredOffers spans tenants; it feeds the expiry sweep.
	ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]domain.Offer, error)
}

// Store is a Repo that can run a unit of work atomically.
type Store interface {
	Repo
	// InTx runs fn in one transaction, committed only if fn returns nil.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ActiveOffer returns the candidate's non-terminal offer, or domain.ErrNotFound.
func ActiveOffer(ctx context.Context, r Repo, tenantID, candidateID string) (domain.Offer, error) {
	offers, err := r.ListOffers(ctx, tenantID, OfferFilter{CandidateID: candidateID, Statuses: ActiveOfferStatuses})
	if err != nil {
		return domain.Offer{}, err
	}
	if len(offers) == 0 {
		return domain.Offer{}, domain.NotFound("active offer for candidate", candidateID)
	}
	return offers[0], nil
}

// ActiveOfferStatuses are the non-terminal offer states.
var ActiveOfferStatuses = []domain.OfferStatus{
	domain.OfferDraft,
	domain.OfferPendingApproval,
	domain.OfferApproved,
	domain.OfferSent,
	domain.OfferNegotiating,
}
